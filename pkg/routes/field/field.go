package field

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/catalog"
)

// Register registers field catalog routes
func Register(g *echo.Group) {
	g.GET("", ListFields)
}

// ListFields returns the canonical field catalog so mapping review UIs can
// offer the full set of assignable fields
func ListFields(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"fields": catalog.Fields()})
}
