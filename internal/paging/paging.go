package paging

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a limit/offset window.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Response wraps a list response with pagination details.
type Response struct {
	Data  any  `json:"data"`
	Total int  `json:"total"`
	Page  Page `json:"pagination"`
}

// Parse extracts limit and offset from query params with validation and defaults.
func Parse(c echo.Context) Page {
	p := Page{Limit: DefaultLimit}
	if l := c.QueryParam("limit"); l != "" {
		v, err := strconv.Atoi(l)
		switch {
		case err != nil || v <= 0:
		case v > MaxLimit:
			slog.WarnContext(c.Request().Context(), "requested limit exceeds maximum, capping",
				slog.Int("requested", v), slog.Int("max", MaxLimit))
			p.Limit = MaxLimit
		default:
			p.Limit = v
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			p.Offset = v
		}
	}
	return p
}

// Normalize clamps a page built outside of HTTP parsing.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Window returns the slice bounds for n items.
func (p Page) Window(n int) (start, end int) {
	p = p.Normalize()
	start = p.Offset
	if start > n {
		start = n
	}
	end = start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
