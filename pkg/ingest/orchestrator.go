// Package ingest orchestrates the batch pipeline: parse, map, review,
// process, stage, and push
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/appcontext"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/identity"
	"github.com/Ramsey-B/fern/pkg/mapper"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/parser"
	"github.com/Ramsey-B/fern/pkg/store"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/transform"
	"github.com/Ramsey-B/fern/pkg/validate"
)

// UploadedFile is one file in an upload request
type UploadedFile struct {
	Name string
	Data []byte
}

// BatchStore persists batch bookkeeping
type BatchStore interface {
	Create(ctx context.Context, tenantID string, files []string) (*models.Batch, error)
	Get(ctx context.Context, tenantID, id string) (*models.Batch, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]models.Batch, error)
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, tenantID, id string) error
}

// ListingStore persists accepted records and serves the dedup ledger
type ListingStore interface {
	KnownIdentities(ctx context.Context, tenantID string) (map[string]bool, error)
	StageListings(ctx context.Context, tenantID, batchID string, records []*models.CanonicalRecord) ([]models.StagedListing, error)
}

// Config tunes the pipeline
type Config struct {
	// MappingThreshold is the minimum similarity to accept a header mapping
	MappingThreshold float64
	// ReviewThreshold is the stricter score below which an accepted mapping
	// still forces manual review
	ReviewThreshold float64
	// ParseWorkers bounds concurrent file parsing within one batch
	ParseWorkers int
	// MaxRowsPerBatch rejects oversized uploads before processing
	MaxRowsPerBatch int
}

// Orchestrator drives one batch through the ingest state machine. Parsing
// fans out per file; everything after the mapping runs as a single pass to
// keep dedup ordering deterministic.
type Orchestrator struct {
	logger   ectologger.Logger
	config   Config
	batches  BatchStore
	listings ListingStore
	store    store.Client
	emitter  events.Emitter

	mapper      *mapper.Mapper
	transformer *transform.Transformer
	validator   *validate.Validator
	dedup       *identity.Deduplicator

	mu      sync.Mutex
	pending map[string][]*parser.Table
	cancels map[string]context.CancelFunc
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(cfg Config, batches BatchStore, listings ListingStore, storeClient store.Client, emitter events.Emitter, logger ectologger.Logger) *Orchestrator {
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = 4
	}

	return &Orchestrator{
		logger:      logger,
		config:      cfg,
		batches:     batches,
		listings:    listings,
		store:       storeClient,
		emitter:     emitter,
		mapper:      mapper.New(),
		transformer: transform.New(),
		validator:   validate.New(),
		dedup:       identity.NewDeduplicator(),
		pending:     make(map[string][]*parser.Table),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// StartBatch creates a batch from uploaded files, parses them, and maps the
// unioned headers. A clean mapping proceeds straight to async processing;
// anything questionable parks the batch in mapping_review.
func (o *Orchestrator) StartBatch(ctx context.Context, tenantID string, files []UploadedFile) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Orchestrator.StartBatch")
	defer span.End()

	if len(files) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "batch requires at least one file")
	}

	names := ectolinq.Map(files, func(f UploadedFile) string { return f.Name })

	batch, err := o.batches.Create(ctx, tenantID, names)
	if err != nil {
		return nil, err
	}

	log := o.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id":  batch.ID,
		"tenant_id": tenantID,
		"files":     len(files),
	})

	batch.State = models.BatchStateParse
	if err := o.batches.Update(ctx, batch); err != nil {
		return nil, err
	}

	tables, fileErrors := o.parseFiles(ctx, files)
	batch.FileErrors = fileErrors
	for range fileErrors {
		metrics.FileParseFailures.WithLabelValues(tenantID).Inc()
	}

	if len(tables) == 0 {
		log.Warn("Every file in the batch failed to parse")
		batch.State = models.BatchStateComplete
		if err := o.batches.Update(ctx, batch); err != nil {
			return nil, err
		}
		_ = o.emitter.BatchFailed(ctx, batch, "no file could be parsed")
		metrics.BatchesTotal.WithLabelValues(tenantID, string(batch.State)).Inc()
		return batch, nil
	}

	totalRows := 0
	for _, table := range tables {
		totalRows += len(table.Rows)
	}
	if o.config.MaxRowsPerBatch > 0 && totalRows > o.config.MaxRowsPerBatch {
		_ = o.batches.Delete(ctx, tenantID, batch.ID)
		return nil, httperror.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch has %d rows, limit is %d", totalRows, o.config.MaxRowsPerBatch))
	}
	batch.Progress.Total = totalRows

	mapping := o.mapper.MapHeaders(unionHeaders(tables), o.config.MappingThreshold)
	batch.Mapping = &mapping

	o.mu.Lock()
	o.pending[batch.ID] = tables
	o.mu.Unlock()

	if mapping.NeedsReview(o.config.ReviewThreshold) {
		log.WithFields(map[string]any{
			"missing_required": len(mapping.MissingRequiredFields),
			"unmapped":         len(mapping.UnmappedHeaders),
		}).Info("Batch requires mapping review")

		batch.State = models.BatchStateMappingReview
		if err := o.batches.Update(ctx, batch); err != nil {
			return nil, err
		}
		_ = o.emitter.MappingReviewRequired(ctx, batch)
		return batch, nil
	}

	return o.beginProcessing(ctx, batch)
}

// SubmitMapping accepts a corrected mapping from manual review and resumes
// the batch at processing
func (o *Orchestrator) SubmitMapping(ctx context.Context, tenantID, batchID string, req models.SubmitMappingRequest) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Orchestrator.SubmitMapping")
	defer span.End()

	batch, err := o.batches.Get(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	if batch.State != models.BatchStateMappingReview {
		return nil, httperror.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("batch %s is in state %s, not mapping_review", batchID, batch.State))
	}

	o.mu.Lock()
	tables := o.pending[batchID]
	o.mu.Unlock()
	if len(tables) == 0 {
		return nil, httperror.NewHTTPError(http.StatusGone, "batch files are no longer held; upload again")
	}

	corrected, err := o.correctedMapping(req.Mappings, tables)
	if err != nil {
		return nil, err
	}
	batch.Mapping = corrected

	return o.beginProcessing(ctx, batch)
}

// Process confirms the automatic mapping of a batch parked in mapping_review
// and resumes it without edits. Records missing required fields will carry
// validation errors instead of blocking the batch.
func (o *Orchestrator) Process(ctx context.Context, tenantID, batchID string) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Orchestrator.Process")
	defer span.End()

	batch, err := o.batches.Get(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	if batch.State != models.BatchStateMappingReview {
		return nil, httperror.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("batch %s is in state %s, not mapping_review", batchID, batch.State))
	}

	o.mu.Lock()
	held := len(o.pending[batchID]) > 0
	o.mu.Unlock()
	if !held {
		return nil, httperror.NewHTTPError(http.StatusGone, "batch files are no longer held; upload again")
	}

	return o.beginProcessing(ctx, batch)
}

// correctedMapping rebuilds a MappingResult from reviewed mappings,
// re-deriving the unmapped list against the held files and enforcing the
// header/field bijection
func (o *Orchestrator) correctedMapping(mappings []models.FieldMapping, tables []*parser.Table) (*models.MappingResult, error) {
	usedFields := make(map[string]bool, len(mappings))
	usedHeaders := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if usedFields[m.Field.Name] {
			return nil, httperror.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("field %q is mapped by more than one header", m.Field.Name))
		}
		if usedHeaders[m.InputHeader] {
			return nil, httperror.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("header %q is mapped more than once", m.InputHeader))
		}
		usedFields[m.Field.Name] = true
		usedHeaders[m.InputHeader] = true
	}

	result := &models.MappingResult{Mappings: mappings}
	for _, header := range unionHeaders(tables) {
		if !usedHeaders[header] {
			result.UnmappedHeaders = append(result.UnmappedHeaders, header)
		}
	}
	return result, nil
}

// beginProcessing flips the batch to processing and launches the async
// pipeline. The worker context is detached from the request but keeps the
// tenant for logging and downstream calls.
func (o *Orchestrator) beginProcessing(ctx context.Context, batch *models.Batch) (*models.Batch, error) {
	batch.State = models.BatchStateProcessing
	if err := o.batches.Update(ctx, batch); err != nil {
		return nil, err
	}

	workCtx := appcontext.SetTenantID(context.Background(), batch.TenantID)
	workCtx = appcontext.SetRequestID(workCtx, appcontext.GetRequestID(ctx))
	workCtx, cancel := context.WithCancel(workCtx)

	o.mu.Lock()
	o.cancels[batch.ID] = cancel
	o.mu.Unlock()

	// The worker gets its own copy; the caller's batch is being serialized
	// into the HTTP response concurrently
	worker := *batch
	go o.process(workCtx, &worker)

	return batch, nil
}

// process runs transform, validate, dedup, stage, and push for one batch.
// Per-row failures are recorded and counted, never fatal to the batch.
func (o *Orchestrator) process(ctx context.Context, batch *models.Batch) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Orchestrator.process")
	defer span.End()

	defer func() {
		o.mu.Lock()
		delete(o.cancels, batch.ID)
		delete(o.pending, batch.ID)
		o.mu.Unlock()
	}()

	log := o.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id":  batch.ID,
		"tenant_id": batch.TenantID,
	})
	start := time.Now()

	o.mu.Lock()
	tables := o.pending[batch.ID]
	o.mu.Unlock()

	known, err := o.listings.KnownIdentities(ctx, batch.TenantID)
	if err != nil {
		log.WithError(err).Error("Failed to load known identities; abandoning batch")
		return
	}

	var records []*models.CanonicalRecord
	for _, table := range tables {
		for i, row := range table.Rows {
			select {
			case <-ctx.Done():
				log.Info("Batch canceled during processing")
				return
			default:
			}

			rowIndex := i + 1
			rec, rowErr := o.processRow(row, *batch.Mapping, table.FileName, rowIndex)
			batch.Progress.Processed++
			if rowErr != nil {
				batch.Progress.Failed++
				batch.RowErrors = append(batch.RowErrors, *rowErr)
				metrics.RowsProcessed.WithLabelValues(batch.TenantID, "failed").Inc()
				continue
			}
			batch.Progress.Successful++
			metrics.RowsProcessed.WithLabelValues(batch.TenantID, "successful").Inc()
			records = append(records, rec)
		}

		// Persist counters at file boundaries so progress survives a crash
		if err := o.batches.Update(ctx, batch); err != nil {
			log.WithError(err).Warn("Failed to persist batch progress")
		}
	}

	accepted, duplicates := o.dedup.Filter(records, known)
	batch.Duplicates = duplicates
	for _, dup := range duplicates {
		metrics.DuplicatesTotal.WithLabelValues(batch.TenantID, string(dup.Reason)).Inc()
		_ = o.emitter.ListingDuplicate(ctx, batch.TenantID, batch.ID, dup)
	}

	staged, err := o.listings.StageListings(ctx, batch.TenantID, batch.ID, accepted)
	if err != nil {
		log.WithError(err).Error("Failed to stage accepted listings")
		_ = o.emitter.BatchFailed(ctx, batch, "failed to stage listings")
		_ = o.batches.Update(ctx, batch)
		return
	}

	for _, listing := range staged {
		_ = o.emitter.ListingStaged(ctx, batch.TenantID, batch.ID, listing)

		if _, err := o.store.PushListing(ctx, batch.TenantID, listing); err != nil {
			log.WithError(err).WithFields(map[string]any{
				"listing_id": listing.ID,
			}).Error("Failed to push listing to store")
			batch.RowErrors = append(batch.RowErrors, models.RowError{
				File:    listing.SourceFile,
				Row:     listing.RowIndex,
				Message: fmt.Sprintf("staged but not pushed to store: %v", err),
			})
		}
	}

	batch.State = models.BatchStateComplete
	if err := o.batches.Update(ctx, batch); err != nil {
		log.WithError(err).Error("Failed to mark batch complete")
		return
	}

	metrics.BatchesTotal.WithLabelValues(batch.TenantID, string(batch.State)).Inc()
	metrics.BatchDuration.WithLabelValues(batch.TenantID).Observe(time.Since(start).Seconds())
	_ = o.emitter.BatchCompleted(ctx, batch)

	log.WithFields(map[string]any{
		"total":      batch.Progress.Total,
		"successful": batch.Progress.Successful,
		"failed":     batch.Progress.Failed,
		"duplicates": len(duplicates),
	}).Info("Batch complete")
}

// processRow transforms and validates one row. Panics from unexpected value
// shapes are contained here and reported as row errors.
func (o *Orchestrator) processRow(row models.RawRecord, mapping models.MappingResult, fileName string, rowIndex int) (rec *models.CanonicalRecord, rowErr *models.RowError) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			rowErr = &models.RowError{
				File:    fileName,
				Row:     rowIndex,
				Message: fmt.Sprintf("row could not be transformed: %v", r),
			}
		}
	}()

	rec = o.transformer.Transform(row, mapping, fileName, rowIndex)
	rec.Validation = o.validator.Validate(row, mapping.Mappings)
	return rec, nil
}

// Cancel abandons an in-flight batch and resets it to upload. Partial
// progress is discarded; identities already staged stay staged.
func (o *Orchestrator) Cancel(ctx context.Context, tenantID, batchID string) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Orchestrator.Cancel")
	defer span.End()

	batch, err := o.batches.Get(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if cancel, ok := o.cancels[batchID]; ok {
		cancel()
		delete(o.cancels, batchID)
	}
	delete(o.pending, batchID)
	o.mu.Unlock()

	batch.State = models.BatchStateUpload
	batch.Mapping = nil
	batch.Progress = models.Progress{}
	batch.RowErrors = nil
	batch.FileErrors = nil
	batch.Duplicates = nil
	if err := o.batches.Update(ctx, batch); err != nil {
		return nil, err
	}

	o.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id":  batchID,
		"tenant_id": tenantID,
	}).Info("Batch canceled")

	return batch, nil
}

// GetBatch returns one batch
func (o *Orchestrator) GetBatch(ctx context.Context, tenantID, batchID string) (*models.Batch, error) {
	return o.batches.Get(ctx, tenantID, batchID)
}

// ListBatches returns a page of batches, newest first
func (o *Orchestrator) ListBatches(ctx context.Context, tenantID string, limit, offset int) ([]models.Batch, error) {
	return o.batches.List(ctx, tenantID, limit, offset)
}

// DeleteBatch cancels any in-flight work and removes the batch
func (o *Orchestrator) DeleteBatch(ctx context.Context, tenantID, batchID string) error {
	o.mu.Lock()
	if cancel, ok := o.cancels[batchID]; ok {
		cancel()
		delete(o.cancels, batchID)
	}
	delete(o.pending, batchID)
	o.mu.Unlock()

	return o.batches.Delete(ctx, tenantID, batchID)
}

// parseFiles parses every file concurrently, preserving file order in the
// results. A file that fails to parse becomes a FileError; it never aborts
// the batch.
func (o *Orchestrator) parseFiles(ctx context.Context, files []UploadedFile) ([]*parser.Table, []models.FileError) {
	_, span := tracing.StartSpan(ctx, "ingest.Orchestrator.parseFiles")
	defer span.End()

	type result struct {
		table *parser.Table
		err   error
	}

	results := make([]result, len(files))
	sem := make(chan struct{}, o.config.ParseWorkers)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file UploadedFile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			table, err := parser.ParseFile(file.Name, file.Data)
			results[i] = result{table: table, err: err}
		}(i, file)
	}
	wg.Wait()

	var tables []*parser.Table
	var fileErrors []models.FileError
	for i, res := range results {
		if res.err != nil {
			fileErrors = append(fileErrors, models.FileError{
				File:    files[i].Name,
				Message: res.err.Error(),
			})
			continue
		}
		tables = append(tables, res.table)
	}
	return tables, fileErrors
}

// unionHeaders merges headers across files preserving first-seen order, so
// one mapping covers the whole batch
func unionHeaders(tables []*parser.Table) []string {
	var union []string
	seen := make(map[string]bool)
	for _, table := range tables {
		for _, header := range table.Headers {
			if !seen[header] {
				seen[header] = true
				union = append(union, header)
			}
		}
	}
	return union
}
