package listing

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/listing"
	"github.com/Ramsey-B/fern/pkg/appcontext"
)

// Register registers staged listing routes
func Register(g *echo.Group) {
	g.GET("/:id", GetListing)
	g.DELETE("/:id", DeleteListing)
}

// GetListing returns one staged listing with its canonical fields and raw row
func GetListing(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ctx, repo, err := ectoinject.GetContext[*listing.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	staged, err := repo.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, staged)
}

// DeleteListing soft-deletes a staged listing, releasing its identity for
// future batches
func DeleteListing(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ctx, repo, err := ectoinject.GetContext[*listing.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.Delete(ctx, tenantID, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
