package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/talentbook/internal/auth"
)

type fakeVerifier struct {
	vendorID, token string
}

func (f fakeVerifier) VerifyEditToken(_ context.Context, vendorID, token string) (bool, error) {
	return vendorID == f.vendorID && token == f.token, nil
}

func newTestServer(tokens *auth.Tokens) *echo.Echo {
	e := echo.New()
	g := e.Group("", Authenticate(tokens, fakeVerifier{vendorID: "v1", token: "edit-123"}))
	g.GET("/whoami", func(c echo.Context) error {
		a := CurrentActor(c)
		return c.JSON(http.StatusOK, echo.Map{"id": a.ID(), "role": a.Role, "vendor_id": a.VendorID})
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, AdminGuard)
	g.GET("/vendors-only", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		RequireRoles(auth.RoleVendor))
	return e
}

func do(e *echo.Echo, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateRequiresCredentials(t *testing.T) {
	e := newTestServer(auth.NewTokens("secret", nil))
	if rec := do(e, "/whoami", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec := do(e, "/whoami", map[string]string{"Authorization": "Bearer nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for bad token", rec.Code)
	}
}

func TestAuthenticateWithEditToken(t *testing.T) {
	e := newTestServer(auth.NewTokens("secret", nil))
	rec := do(e, "/vendors-only", map[string]string{HeaderVendorID: "v1", HeaderEditToken: "edit-123"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	rec = do(e, "/vendors-only", map[string]string{HeaderVendorID: "v1", HeaderEditToken: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for wrong edit token", rec.Code)
	}
}

func TestAdminGuardUsesRoleClaim(t *testing.T) {
	tokens := auth.NewTokens("secret", nil)
	e := newTestServer(tokens)

	vendorTok, _ := tokens.Issue(auth.Actor{UserID: "u1", Role: auth.RoleVendor}, time.Hour)
	if rec := do(e, "/admin", map[string]string{"Authorization": "Bearer " + vendorTok}); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for vendor", rec.Code)
	}
	adminTok, _ := tokens.Issue(auth.Actor{UserID: "u2", Role: auth.RoleAdmin}, time.Hour)
	if rec := do(e, "/admin", map[string]string{"Authorization": "Bearer " + adminTok}); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 for admin", rec.Code)
	}
}

func TestAuthenticateAcceptsQueryToken(t *testing.T) {
	tokens := auth.NewTokens("secret", nil)
	e := newTestServer(tokens)
	tok, _ := tokens.Issue(auth.Actor{UserID: "u1", Role: auth.RoleVendor, VendorID: "v1"}, time.Hour)
	if rec := do(e, "/vendors-only?token="+tok, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
