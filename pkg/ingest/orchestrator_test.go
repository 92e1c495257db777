package ingest

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/identity"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/store"
)

type fakeBatchStore struct {
	mu      sync.Mutex
	batches map[string]models.Batch
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{batches: make(map[string]models.Batch)}
}

func (s *fakeBatchStore) Create(_ context.Context, tenantID string, files []string) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := models.Batch{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		State:     models.BatchStateUpload,
		Files:     files,
		CreatedAt: time.Now().UTC(),
	}
	s.batches[batch.ID] = batch
	return &batch, nil
}

func (s *fakeBatchStore) Get(_ context.Context, tenantID, id string) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.batches[id]
	if !ok || batch.TenantID != tenantID {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "batch not found")
	}
	return &batch, nil
}

func (s *fakeBatchStore) List(_ context.Context, tenantID string, _, _ int) ([]models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Batch
	for _, batch := range s.batches {
		if batch.TenantID == tenantID {
			out = append(out, batch)
		}
	}
	return out, nil
}

func (s *fakeBatchStore) Update(_ context.Context, batch *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[batch.ID] = *batch
	return nil
}

func (s *fakeBatchStore) Delete(_ context.Context, _, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.batches, id)
	return nil
}

type fakeListingStore struct {
	mu     sync.Mutex
	known  map[string]bool
	staged []models.StagedListing
}

func newFakeListingStore(known map[string]bool) *fakeListingStore {
	if known == nil {
		known = make(map[string]bool)
	}
	return &fakeListingStore{known: known}
}

func (s *fakeListingStore) KnownIdentities(_ context.Context, _ string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]bool, len(s.known))
	for k, v := range s.known {
		out[k] = v
	}
	return out, nil
}

func (s *fakeListingStore) StageListings(_ context.Context, tenantID, batchID string, records []*models.CanonicalRecord) ([]models.StagedListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.StagedListing
	for _, rec := range records {
		listing := models.StagedListing{
			ID:         uuid.NewString(),
			TenantID:   tenantID,
			BatchID:    batchID,
			Identity:   identity.Derive(rec),
			SourceFile: rec.SourceFile,
			RowIndex:   rec.RowIndex,
			Status:     "draft",
		}
		s.staged = append(s.staged, listing)
		out = append(out, listing)
	}
	return out, nil
}

func (s *fakeListingStore) stagedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

type fakeStoreClient struct {
	mu     sync.Mutex
	pushed []string
}

func (c *fakeStoreClient) PushListing(_ context.Context, _ string, listing models.StagedListing) (*store.StoredListing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pushed = append(c.pushed, listing.ID)
	return &store.StoredListing{ID: listing.ID, State: "active"}, nil
}

func (c *fakeStoreClient) pushedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pushed)
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *fakeEmitter) record(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, name)
}

func (e *fakeEmitter) count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, ev := range e.events {
		if ev == name {
			n++
		}
	}
	return n
}

func (e *fakeEmitter) BatchCompleted(_ context.Context, _ *models.Batch) error {
	e.record("batch.completed")
	return nil
}

func (e *fakeEmitter) BatchFailed(_ context.Context, _ *models.Batch, _ string) error {
	e.record("batch.failed")
	return nil
}

func (e *fakeEmitter) MappingReviewRequired(_ context.Context, _ *models.Batch) error {
	e.record("mapping.review_required")
	return nil
}

func (e *fakeEmitter) ListingStaged(_ context.Context, _, _ string, _ models.StagedListing) error {
	e.record("listing.staged")
	return nil
}

func (e *fakeEmitter) ListingDuplicate(_ context.Context, _, _ string, _ models.DuplicateNotice) error {
	e.record("listing.duplicate")
	return nil
}

type harness struct {
	orch     *Orchestrator
	batches  *fakeBatchStore
	listings *fakeListingStore
	pusher   *fakeStoreClient
	emitter  *fakeEmitter
}

func newHarness(t *testing.T, cfg Config, known map[string]bool) *harness {
	t.Helper()

	h := &harness{
		batches:  newFakeBatchStore(),
		listings: newFakeListingStore(known),
		pusher:   &fakeStoreClient{},
		emitter:  &fakeEmitter{},
	}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	h.orch = NewOrchestrator(cfg, h.batches, h.listings, h.pusher, h.emitter, logger)
	return h
}

func defaultConfig() Config {
	return Config{
		MappingThreshold: 0.65,
		ReviewThreshold:  0.8,
		ParseWorkers:     2,
	}
}

func (h *harness) waitForState(t *testing.T, tenantID, batchID string, want models.BatchState) *models.Batch {
	t.Helper()

	require.Eventually(t, func() bool {
		batch, err := h.batches.Get(context.Background(), tenantID, batchID)
		return err == nil && batch.State == want
	}, 2*time.Second, 10*time.Millisecond, "batch never reached state %s", want)

	batch, err := h.batches.Get(context.Background(), tenantID, batchID)
	require.NoError(t, err)
	return batch
}

const cleanHeader = "MLS Number,Street Number,Street Name,City,State,Zip Code,List Price,Property Type\n"

func TestStartBatchCleanMappingCompletes(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	csv := cleanHeader +
		"A100,123,Main,Austin,TX,78701,\"450,000\",Single Family\n" +
		"B200,456,Oak,Dallas,TX,75201,310000,Condo\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BatchStateProcessing, batch.State)

	done := h.waitForState(t, "tenant-1", batch.ID, models.BatchStateComplete)
	assert.Equal(t, 2, done.Progress.Total)
	assert.Equal(t, 2, done.Progress.Processed)
	assert.Equal(t, 2, done.Progress.Successful)
	assert.Equal(t, 0, done.Progress.Failed)
	assert.Empty(t, done.RowErrors)
	assert.Empty(t, done.FileErrors)
	assert.Empty(t, done.Duplicates)

	assert.Equal(t, 2, h.listings.stagedCount())
	assert.Equal(t, 2, h.pusher.pushedCount())
	assert.Equal(t, 1, h.emitter.count("batch.completed"))
	assert.Equal(t, 2, h.emitter.count("listing.staged"))
}

func TestStartBatchBadFileDoesNotAbortOthers(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	first := cleanHeader + "A100,123,Main,Austin,TX,78701,450000,Single Family\n"
	third := cleanHeader + "B200,456,Oak,Dallas,TX,75201,310000,Condo\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "one.csv", Data: []byte(first)},
		{Name: "two.csv", Data: []byte{}},
		{Name: "three.csv", Data: []byte(third)},
	})
	require.NoError(t, err)

	done := h.waitForState(t, "tenant-1", batch.ID, models.BatchStateComplete)
	require.Len(t, done.FileErrors, 1)
	assert.Equal(t, "two.csv", done.FileErrors[0].File)
	assert.Equal(t, 2, done.Progress.Total)
	assert.Equal(t, 2, done.Progress.Successful)
	assert.Equal(t, 2, h.listings.stagedCount())
}

func TestStartBatchAllFilesFail(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "empty.csv", Data: []byte{}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.BatchStateComplete, batch.State)
	assert.Len(t, batch.FileErrors, 1)
	assert.Equal(t, 1, h.emitter.count("batch.failed"))
	assert.Equal(t, 0, h.listings.stagedCount())
}

func TestStartBatchMissingRequiredGoesToReview(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	// no price column, so a required field is uncovered
	csv := "MLS Number,Street Number,Street Name,City,State,Zip Code,Property Type\n" +
		"A100,123,Main,Austin,TX,78701,Single Family\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.NoError(t, err)

	assert.Equal(t, models.BatchStateMappingReview, batch.State)
	require.NotNil(t, batch.Mapping)
	assert.NotEmpty(t, batch.Mapping.MissingRequiredFields)
	assert.Equal(t, 1, h.emitter.count("mapping.review_required"))

	resumed, err := h.orch.SubmitMapping(context.Background(), "tenant-1", batch.ID, models.SubmitMappingRequest{
		Mappings: batch.Mapping.Mappings,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BatchStateProcessing, resumed.State)

	done := h.waitForState(t, "tenant-1", batch.ID, models.BatchStateComplete)
	assert.Equal(t, 1, done.Progress.Successful)
	assert.Equal(t, 1, h.listings.stagedCount())
}

func TestProcessConfirmsAutoMappingFromReview(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	csv := "MLS Number,Street Number,Street Name,City,State,Zip Code,Property Type\n" +
		"A100,123,Main,Austin,TX,78701,Single Family\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.NoError(t, err)
	require.Equal(t, models.BatchStateMappingReview, batch.State)

	resumed, err := h.orch.Process(context.Background(), "tenant-1", batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStateProcessing, resumed.State)

	done := h.waitForState(t, "tenant-1", batch.ID, models.BatchStateComplete)
	assert.Equal(t, 1, done.Progress.Successful)
	assert.Equal(t, 1, h.listings.stagedCount())
}

func TestSubmitMappingRejectsDuplicateAssignments(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	csv := "MLS Number,Street Number,Street Name,City,State,Zip Code,Property Type\n" +
		"A100,123,Main,Austin,TX,78701,Single Family\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.NoError(t, err)
	require.Equal(t, models.BatchStateMappingReview, batch.State)

	doubled := append([]models.FieldMapping{}, batch.Mapping.Mappings...)
	doubled = append(doubled, models.FieldMapping{
		InputHeader: "Made Up Column",
		Field:       batch.Mapping.Mappings[0].Field,
	})

	_, err = h.orch.SubmitMapping(context.Background(), "tenant-1", batch.ID, models.SubmitMappingRequest{
		Mappings: doubled,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestProcessingReportsDuplicates(t *testing.T) {
	known := map[string]bool{"mls:B200": true}
	h := newHarness(t, defaultConfig(), known)

	csv := cleanHeader +
		"A100,123,Main,Austin,TX,78701,450000,Single Family\n" +
		"A100,123,Main,Austin,TX,78701,450000,Single Family\n" +
		"B200,456,Oak,Dallas,TX,75201,310000,Condo\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.NoError(t, err)

	done := h.waitForState(t, "tenant-1", batch.ID, models.BatchStateComplete)
	require.Len(t, done.Duplicates, 2)

	reasons := map[models.DuplicateReason]int{}
	for _, dup := range done.Duplicates {
		reasons[dup.Reason]++
	}
	assert.Equal(t, 1, reasons[models.DuplicateReasonBatch])
	assert.Equal(t, 1, reasons[models.DuplicateReasonExisting])

	assert.Equal(t, 1, h.listings.stagedCount())
	assert.Equal(t, 2, h.emitter.count("listing.duplicate"))
}

func TestCancelResetsBatchAndDropsHeldFiles(t *testing.T) {
	h := newHarness(t, defaultConfig(), nil)

	csv := "MLS Number,Street Number,Street Name,City,State,Zip Code,Property Type\n" +
		"A100,123,Main,Austin,TX,78701,Single Family\n"

	batch, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.NoError(t, err)
	require.Equal(t, models.BatchStateMappingReview, batch.State)

	canceled, err := h.orch.Cancel(context.Background(), "tenant-1", batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStateUpload, canceled.State)
	assert.Nil(t, canceled.Mapping)
	assert.Equal(t, models.Progress{}, canceled.Progress)

	// files were discarded, so the review can no longer be resumed
	_, err = h.orch.SubmitMapping(context.Background(), "tenant-1", batch.ID, models.SubmitMappingRequest{})
	require.Error(t, err)
}

func TestStartBatchEnforcesRowLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxRowsPerBatch = 1
	h := newHarness(t, cfg, nil)

	csv := cleanHeader +
		"A100,123,Main,Austin,TX,78701,450000,Single Family\n" +
		"B200,456,Oak,Dallas,TX,75201,310000,Condo\n"

	_, err := h.orch.StartBatch(context.Background(), "tenant-1", []UploadedFile{
		{Name: "listings.csv", Data: []byte(csv)},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, httperror.GetStatusCode(err))
}
