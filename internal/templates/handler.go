package templates

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves GET /templates?category=
func (c *Catalog) Handler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"templates": c.All(ctx.QueryParam("category"))})
}
