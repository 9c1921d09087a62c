package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/logging"
)

const (
	HeaderVendorID  = "X-Vendor-ID"
	HeaderEditToken = "X-Edit-Token"
)

// EditTokenVerifier checks vendor edit tokens.
type EditTokenVerifier interface {
	VerifyEditToken(ctx context.Context, vendorID, token string) (bool, error)
}

// Authenticate accepts either a bearer JWT (header, or ?token= for
// websocket upgrades) or a vendor edit token pair and stores the resulting
// actor on the request.
func Authenticate(tokens *auth.Tokens, edits EditTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			tokenStr, ok := auth.BearerToken(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				tokenStr = c.QueryParam("token")
			}
			if tokenStr != "" {
				a, err := tokens.Parse(tokenStr)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
				}
				setActor(c, a)
				return next(c)
			}

			vendorID := req.Header.Get(HeaderVendorID)
			editToken := req.Header.Get(HeaderEditToken)
			if vendorID != "" && editToken != "" && edits != nil {
				valid, err := edits.VerifyEditToken(req.Context(), vendorID, editToken)
				if err != nil || !valid {
					if err != nil {
						slog.DebugContext(req.Context(), "edit token check failed", slog.Any("error", err))
					}
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid edit token"})
				}
				setActor(c, auth.Actor{Role: auth.RoleVendor, VendorID: vendorID, ViaEditToken: true})
				return next(c)
			}

			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credentials"})
		}
	}
}

func setActor(c echo.Context, a auth.Actor) {
	ctx := auth.WithActor(c.Request().Context(), a)
	ctx = logging.ContextWithActorID(ctx, a.ID())
	if a.VendorID != "" {
		ctx = logging.ContextWithVendorID(ctx, a.VendorID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("actor", a)
	c.Set("user_id", a.UserID)
	c.Set("role", string(a.Role))
}

// CurrentActor returns the actor set by Authenticate, or the zero actor.
func CurrentActor(c echo.Context) auth.Actor {
	if a, ok := c.Get("actor").(auth.Actor); ok {
		return a
	}
	a, _ := auth.FromContext(c.Request().Context())
	return a
}

// RequestContext copies the echo request id into the request context so
// slog lines carry it.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		if id == "" {
			id = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if id != "" {
			c.SetRequest(c.Request().WithContext(logging.ContextWithRequestID(c.Request().Context(), id)))
		}
		return next(c)
	}
}
