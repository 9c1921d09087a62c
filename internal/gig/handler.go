package gig

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	mware "github.com/sudo-init-do/talentbook/internal/middleware"
	"github.com/sudo-init-do/talentbook/internal/paging"
	"github.com/sudo-init-do/talentbook/pkg/errormapper"
)

type Handler struct {
	gigs *Service
}

func NewHandler(gigs *Service) *Handler {
	return &Handler{gigs: gigs}
}

// POST /gigs
func (h *Handler) CreateDraft(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	g, err := h.gigs.CreateDraft(c.Request().Context(), mware.CurrentActor(c), req)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"gig": g})
}

// GET /gigs/:id
func (h *Handler) Get(c echo.Context) error {
	g, err := h.gigs.Get(c.Request().Context(), mware.CurrentActor(c), c.Param("id"))
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gig": g})
}

// PATCH /gigs/:id
func (h *Handler) SaveStep(c echo.Context) error {
	var bindErr error
	g, err := h.gigs.SaveStep(c.Request().Context(), mware.CurrentActor(c), c.Param("id"), func(u *Update) error {
		bindErr = (&echo.DefaultBinder{}).BindBody(c, u)
		return bindErr
	})
	if bindErr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gig": g})
}

// POST /gigs/:id/publish
func (h *Handler) Publish(c echo.Context) error {
	g, _, err := h.gigs.Publish(c.Request().Context(), mware.CurrentActor(c), c.Param("id"), ModeCatalog)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "gig": g})
}

// POST /gigs/:id/unlist
func (h *Handler) Unlist(c echo.Context) error {
	g, link, err := h.gigs.Publish(c.Request().Context(), mware.CurrentActor(c), c.Param("id"), ModeUnlisted)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "share_link": link, "gig": g})
}

// GET /gigs/slug/:slug
func (h *Handler) GetBySlug(c echo.Context) error {
	g, err := h.gigs.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gig": g})
}

// GET /catalog/gigs
func (h *Handler) Catalog(c echo.Context) error {
	f := CatalogFilter{
		CategoryID: c.QueryParam("category"),
		City:       c.QueryParam("city"),
		Query:      c.QueryParam("q"),
		Page:       paging.Parse(c),
	}
	items, total, err := h.gigs.Catalog(c.Request().Context(), f)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, paging.Response{Data: nonNilGigs(items), Total: total, Page: f.Page})
}

// GET /vendors/:id/gigs
func (h *Handler) ListByVendor(c echo.Context) error {
	page := paging.Parse(c)
	items, total, err := h.gigs.ListByVendor(c.Request().Context(), mware.CurrentActor(c), c.Param("id"), page)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, paging.Response{Data: nonNilGigs(items), Total: total, Page: page})
}

// GET /admin/gigs?status=published,unlisted&moderation_status=pending
func (h *Handler) AdminList(c echo.Context) error {
	f := Filter{
		Moderation: ModerationStatus(c.QueryParam("moderation_status")),
		CategoryID: c.QueryParam("category"),
		Query:      c.QueryParam("q"),
		Page:       paging.Parse(c),
	}
	if raw := c.QueryParam("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, Status(strings.TrimSpace(st)))
		}
	}
	items, total, err := h.gigs.AdminList(c.Request().Context(), mware.CurrentActor(c), f)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, paging.Response{Data: nonNilGigs(items), Total: total, Page: f.Page})
}

// POST /admin/gigs/:id/moderation
func (h *Handler) SetModeration(c echo.Context) error {
	var req struct {
		ModerationStatus ModerationStatus `json:"moderation_status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	g, err := h.gigs.SetModeration(c.Request().Context(), mware.CurrentActor(c), c.Param("id"), req.ModerationStatus)
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gig": g})
}

// POST /admin/gigs/:id/archive
func (h *Handler) Archive(c echo.Context) error {
	g, err := h.gigs.Archive(c.Request().Context(), mware.CurrentActor(c), c.Param("id"))
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gig": g})
}

func nonNilGigs(items []Gig) []Gig {
	if items == nil {
		return []Gig{}
	}
	return items
}
