package booking

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mware "github.com/sudo-init-do/talentbook/internal/middleware"
	"github.com/sudo-init-do/talentbook/internal/paging"
	"github.com/sudo-init-do/talentbook/pkg/errormapper"
)

type Handler struct {
	bookings *Service
}

func NewHandler(bookings *Service) *Handler {
	return &Handler{bookings: bookings}
}

// POST /bookings
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	b, err := h.bookings.Submit(c.Request().Context(), req)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking_id": b.ID, "booking": b})
}

// PATCH /bookings/:id/status
func (h *Handler) SetStatus(c echo.Context) error {
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	b, err := h.bookings.SetStatus(c.Request().Context(), mware.CurrentActor(c), c.Param("id"), req.Status)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// GET /vendors/:id/bookings?status=
func (h *Handler) ListByVendor(c echo.Context) error {
	page := paging.Parse(c)
	items, total, err := h.bookings.ListByVendor(c.Request().Context(), mware.CurrentActor(c),
		c.Param("id"), Status(c.QueryParam("status")), page)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, paging.Response{Data: nonNil(items), Total: total, Page: page})
}

// GET /admin/bookings?status=
func (h *Handler) AdminList(c echo.Context) error {
	page := paging.Parse(c)
	items, total, err := h.bookings.AdminList(c.Request().Context(), mware.CurrentActor(c),
		Status(c.QueryParam("status")), page)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, paging.Response{Data: nonNil(items), Total: total, Page: page})
}

func nonNil(items []Booking) []Booking {
	if items == nil {
		return []Booking{}
	}
	return items
}
