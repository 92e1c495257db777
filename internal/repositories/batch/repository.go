// Package batch persists ingest batches
package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const table = "ingest_batches"

var columns = []string{
	"id", "tenant_id", "state", "files", "mapping", "progress",
	"row_errors", "file_errors", "duplicates", "created_at", "updated_at",
}

// batchRow maps the ingest_batches table; complex fields live in jsonb
type batchRow struct {
	ID         string                                   `db:"id"`
	TenantID   string                                   `db:"tenant_id"`
	State      string                                   `db:"state"`
	Files      database.JSONB[[]string]                 `db:"files"`
	Mapping    database.JSONB[*models.MappingResult]    `db:"mapping"`
	Progress   database.JSONB[models.Progress]          `db:"progress"`
	RowErrors  database.JSONB[[]models.RowError]        `db:"row_errors"`
	FileErrors database.JSONB[[]models.FileError]       `db:"file_errors"`
	Duplicates database.JSONB[[]models.DuplicateNotice] `db:"duplicates"`
	CreatedAt  time.Time                                `db:"created_at"`
	UpdatedAt  time.Time                                `db:"updated_at"`
}

func (r batchRow) toModel() models.Batch {
	return models.Batch{
		ID:         r.ID,
		TenantID:   r.TenantID,
		State:      models.BatchState(r.State),
		Files:      r.Files.Data,
		Mapping:    r.Mapping.Data,
		Progress:   r.Progress.Data,
		RowErrors:  r.RowErrors.Data,
		FileErrors: r.FileErrors.Data,
		Duplicates: r.Duplicates.Data,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toRow(b *models.Batch) batchRow {
	return batchRow{
		ID:         b.ID,
		TenantID:   b.TenantID,
		State:      string(b.State),
		Files:      database.JSONB[[]string]{Data: b.Files},
		Mapping:    database.JSONB[*models.MappingResult]{Data: b.Mapping},
		Progress:   database.JSONB[models.Progress]{Data: b.Progress},
		RowErrors:  database.JSONB[[]models.RowError]{Data: b.RowErrors},
		FileErrors: database.JSONB[[]models.FileError]{Data: b.FileErrors},
		Duplicates: database.JSONB[[]models.DuplicateNotice]{Data: b.Duplicates},
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// Repository handles ingest batch persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new batch repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new batch in the upload state
func (r *Repository) Create(ctx context.Context, tenantID string, files []string) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "batch.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
	})

	now := time.Now().UTC()
	batch := &models.Batch{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		State:     models.BatchStateUpload,
		Files:     files,
		CreatedAt: now,
		UpdatedAt: now,
	}
	row := toRow(batch)

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(columns...)
	sb.Values(
		row.ID, row.TenantID, row.State, row.Files, row.Mapping, row.Progress,
		row.RowErrors, row.FileErrors, row.Duplicates, row.CreatedAt, row.UpdatedAt,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create batch")
	}

	log.WithFields(map[string]any{"id": batch.ID}).Info("Created batch")
	return batch, nil
}

// Get retrieves a batch by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "batch.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var row batchRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("batch %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get batch")
	}

	batch := row.toModel()
	return &batch, nil
}

// List retrieves a page of batches for a tenant, newest first
func (r *Repository) List(ctx context.Context, tenantID string, limit, offset int) ([]models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "batch.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("created_at").Desc()
	sb.Limit(limit)
	sb.Offset(offset)

	query, args := sb.Build()
	var rows []batchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list batches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list batches")
	}

	batches := make([]models.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, row.toModel())
	}
	return batches, nil
}

// Update writes the batch's mutable columns. The orchestrator calls this on
// every state transition and after progress changes.
func (r *Repository) Update(ctx context.Context, batch *models.Batch) error {
	ctx, span := tracing.StartSpan(ctx, "batch.Repository.Update")
	defer span.End()

	batch.UpdatedAt = time.Now().UTC()
	row := toRow(batch)

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("state", row.State),
		ub.Assign("files", row.Files),
		ub.Assign("mapping", row.Mapping),
		ub.Assign("progress", row.Progress),
		ub.Assign("row_errors", row.RowErrors),
		ub.Assign("file_errors", row.FileErrors),
		ub.Assign("duplicates", row.Duplicates),
		ub.Assign("updated_at", row.UpdatedAt),
	)
	ub.Where(
		ub.Equal("id", batch.ID),
		ub.Equal("tenant_id", batch.TenantID),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update batch")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("batch %s not found", batch.ID))
	}

	return nil
}

// Delete removes a batch. Staged listings keep their rows; only the batch
// bookkeeping goes away.
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "batch.Repository.Delete")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(
		db.Equal("id", id),
		db.Equal("tenant_id", tenantID),
	)

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete batch")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("batch %s not found", id))
	}

	return nil
}
