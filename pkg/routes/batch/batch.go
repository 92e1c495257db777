package batch

import (
	"io"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/listing"
	"github.com/Ramsey-B/fern/pkg/appcontext"
	"github.com/Ramsey-B/fern/pkg/ingest"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/utils"
)

// Register registers batch routes
func Register(g *echo.Group) {
	g.POST("", CreateBatch)
	g.GET("", ListBatches)
	g.GET("/:id", GetBatch)
	g.PUT("/:id/mapping", SubmitMapping)
	g.POST("/:id/process", ProcessBatch)
	g.POST("/:id/cancel", CancelBatch)
	g.DELETE("/:id", DeleteBatch)
	g.GET("/:id/listings", ListBatchListings)
}

// CreateBatch accepts a multipart upload of spreadsheet files and starts a
// new ingest batch
func CreateBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	form, err := c.MultipartForm()
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "expected multipart form upload")
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "at least one file is required under the 'files' form key")
	}

	files := make([]ingest.UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		src, err := header.Open()
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "could not open uploaded file "+header.Filename)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "could not read uploaded file "+header.Filename)
		}
		files = append(files, ingest.UploadedFile{Name: header.Filename, Data: data})
	}

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	batch, err := orch.StartBatch(ctx, tenantID, files)
	if err != nil {
		return err
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{
			"batch_id": batch.ID,
			"files":    len(files),
			"state":    batch.State,
		}).Info("Created batch")
	}

	return c.JSON(http.StatusCreated, models.BatchResponse{Batch: *batch})
}

// ListBatches lists the tenant's batches, newest first
func ListBatches(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	batches, err := orch.ListBatches(ctx, tenantID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"batches": batches})
}

// GetBatch returns one batch with its mapping, progress, and error detail
func GetBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	batch, err := orch.GetBatch(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *batch})
}

// SubmitMapping accepts the corrected mapping from manual review and resumes
// the batch
func SubmitMapping(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	var req models.SubmitMappingRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if _, err := utils.Validate(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	batch, err := orch.SubmitMapping(ctx, tenantID, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *batch})
}

// ProcessBatch confirms the automatic mapping of a batch in review and
// starts processing without mapping edits
func ProcessBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	batch, err := orch.Process(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *batch})
}

// CancelBatch abandons any in-flight work and resets the batch to upload
func CancelBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	batch, err := orch.Cancel(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *batch})
}

// DeleteBatch removes the batch record. Listings staged by the batch keep
// their rows.
func DeleteBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ctx, orch, err := ectoinject.GetContext[*ingest.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := orch.DeleteBatch(ctx, tenantID, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ListBatchListings pages through the listings a batch staged
func ListBatchListings(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	ctx, repo, err := ectoinject.GetContext[*listing.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	page, err := repo.ListByBatch(ctx, tenantID, c.Param("id"), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
