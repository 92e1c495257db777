// Package listing persists staged listings and serves the dedup ledger
package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const table = "staged_listings"

var columns = []string{
	"id", "tenant_id", "batch_id", "identity", "mls_number", "data", "raw",
	"source_file", "row_index", "fingerprint", "completion", "status",
	"created_at", "updated_at", "deleted_at",
}

// Repository handles staged listing persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new staged listing repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// KnownIdentities loads every live listing identity for a tenant. The
// orchestrator reads this once at the start of processing; it is not a
// consistent snapshot if other batches are writing concurrently.
func (r *Repository) KnownIdentities(ctx context.Context, tenantID string) (map[string]bool, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.KnownIdentities")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("identity")
	sb.From(table)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.NotEqual("identity", ""),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var identities []string
	if err := r.db.SelectContext(ctx, &identities, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load known identities")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load known identities")
	}

	known := make(map[string]bool, len(identities))
	for _, id := range identities {
		known[id] = true
	}
	return known, nil
}

// StageListings inserts accepted records in one transaction. Identity
// collisions with concurrent batches are skipped rather than failed, so a
// race between two uploads cannot poison a whole batch.
func (r *Repository) StageListings(ctx context.Context, tenantID, batchID string, records []*models.CanonicalRecord) ([]models.StagedListing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.StageListings")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "StageListings",
		"tenant_id": tenantID,
		"batch_id":  batchID,
		"count":     len(records),
	})

	if len(records) == 0 {
		return nil, nil
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin staging transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	staged := make([]models.StagedListing, 0, len(records))

	for _, rec := range records {
		listing, err := buildListing(tenantID, batchID, rec, now)
		if err != nil {
			log.WithError(err).Error("Failed to serialize record for staging")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to serialize record")
		}

		ib := database.NewInsertBuilder()
		ib = ib.InsertInto(table).
			Cols("id", "tenant_id", "batch_id", "identity", "mls_number", "data", "raw",
				"source_file", "row_index", "fingerprint", "completion", "status",
				"created_at", "updated_at").
			Values(listing.ID, listing.TenantID, listing.BatchID, listing.Identity,
				listing.MLSNumber, listing.Data, listing.Raw, listing.SourceFile,
				listing.RowIndex, listing.Fingerprint, listing.Completion, listing.Status,
				listing.CreatedAt, listing.UpdatedAt).
			OnConflictDoNothing()

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("Failed to stage listing")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to stage listings")
		}
		staged = append(staged, listing)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit staged listings")
	}

	log.Info("Staged listings")
	return staged, nil
}

func buildListing(tenantID, batchID string, rec *models.CanonicalRecord, now time.Time) (models.StagedListing, error) {
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return models.StagedListing{}, fmt.Errorf("failed to marshal fields: %w", err)
	}
	raw, err := json.Marshal(rec.Raw)
	if err != nil {
		return models.StagedListing{}, fmt.Errorf("failed to marshal raw row: %w", err)
	}

	return models.StagedListing{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		BatchID:     batchID,
		Identity:    rec.Identity,
		MLSNumber:   rec.StringField(catalog.FieldMLSNumber),
		Data:        data,
		Raw:         raw,
		SourceFile:  rec.SourceFile,
		RowIndex:    rec.RowIndex,
		Fingerprint: fingerprint.Generate(rec.Fields),
		Completion:  rec.Validation.CompletionPercentage,
		Status:      "draft",
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get retrieves a staged listing by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.StagedListing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var listing models.StagedListing
	if err := r.db.GetContext(ctx, &listing, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("listing %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get staged listing")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staged listing")
	}

	return &listing, nil
}

// ListByBatch retrieves a page of staged listings for one batch, in
// ingestion order
func (r *Repository) ListByBatch(ctx context.Context, tenantID, batchID string, limit, offset int) (*models.StagedListingListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.ListByBatch")
	defer span.End()

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(table)
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.Equal("batch_id", batchID),
		countSb.IsNull("deleted_at"),
	)

	query, args := countSb.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count staged listings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list staged listings")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("batch_id", batchID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("source_file", "row_index")
	sb.Limit(limit)
	sb.Offset(offset)

	query, args = sb.Build()
	var items []models.StagedListing
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list staged listings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list staged listings")
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return &models.StagedListingListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   limit,
	}, nil
}

// Delete soft-deletes a staged listing, freeing its identity for future
// ingests
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.Delete")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("deleted_at", time.Now().UTC()),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("tenant_id", tenantID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete staged listing")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete staged listing")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("listing %s not found", id))
	}

	return nil
}
