// Package events emits ingest lifecycle events for downstream consumers
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SchemaVersion is bumped when the event envelope changes shape
const SchemaVersion = 1

const (
	EventBatchCompleted        = "batch.completed"
	EventBatchFailed           = "batch.failed"
	EventMappingReviewRequired = "mapping.review_required"
	EventListingStaged         = "listing.staged"
	EventListingDuplicate      = "listing.duplicate"
)

// Envelope is the wire form of every ingest event
type Envelope struct {
	EventType     string          `json:"event_type"`
	SchemaVersion int             `json:"schema_version"`
	TenantID      string          `json:"tenant_id"`
	BatchID       string          `json:"batch_id"`
	Data          json.RawMessage `json:"data,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Emitter publishes ingest lifecycle events. Implementations must be safe
// for concurrent use.
type Emitter interface {
	BatchCompleted(ctx context.Context, batch *models.Batch) error
	BatchFailed(ctx context.Context, batch *models.Batch, reason string) error
	MappingReviewRequired(ctx context.Context, batch *models.Batch) error
	ListingStaged(ctx context.Context, tenantID, batchID string, listing models.StagedListing) error
	ListingDuplicate(ctx context.Context, tenantID, batchID string, notice models.DuplicateNotice) error
}

// KafkaEmitter emits events through a kafka producer
type KafkaEmitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewKafkaEmitter creates a KafkaEmitter
func NewKafkaEmitter(producer *kafka.Producer, logger ectologger.Logger) *KafkaEmitter {
	return &KafkaEmitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *KafkaEmitter) BatchCompleted(ctx context.Context, batch *models.Batch) error {
	return e.emit(ctx, EventBatchCompleted, batch.TenantID, batch.ID, map[string]any{
		"progress":   batch.Progress,
		"duplicates": len(batch.Duplicates),
	})
}

func (e *KafkaEmitter) BatchFailed(ctx context.Context, batch *models.Batch, reason string) error {
	return e.emit(ctx, EventBatchFailed, batch.TenantID, batch.ID, map[string]any{
		"reason": reason,
	})
}

func (e *KafkaEmitter) MappingReviewRequired(ctx context.Context, batch *models.Batch) error {
	return e.emit(ctx, EventMappingReviewRequired, batch.TenantID, batch.ID, map[string]any{
		"mapping": batch.Mapping,
	})
}

func (e *KafkaEmitter) ListingStaged(ctx context.Context, tenantID, batchID string, listing models.StagedListing) error {
	return e.emit(ctx, EventListingStaged, tenantID, batchID, map[string]any{
		"listing_id":  listing.ID,
		"identity":    listing.Identity,
		"mls_number":  listing.MLSNumber,
		"source_file": listing.SourceFile,
		"row_index":   listing.RowIndex,
		"completion":  listing.Completion,
	})
}

func (e *KafkaEmitter) ListingDuplicate(ctx context.Context, tenantID, batchID string, notice models.DuplicateNotice) error {
	return e.emit(ctx, EventListingDuplicate, tenantID, batchID, map[string]any{
		"identifying_info": notice.IdentifyingInfo,
		"reason":           notice.Reason,
	})
}

func (e *KafkaEmitter) emit(ctx context.Context, eventType, tenantID, batchID string, data any) error {
	ctx, span := tracing.StartSpan(ctx, "events.KafkaEmitter.emit")
	defer span.End()

	payload, err := json.Marshal(data)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to marshal event payload")
		return err
	}

	envelope := Envelope{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		TenantID:      tenantID,
		BatchID:       batchID,
		Data:          payload,
		Timestamp:     time.Now().UTC(),
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	// Batch ID as key keeps one batch's events in order
	return e.producer.Publish(ctx, batchID, value, map[string]string{
		"event_type": eventType,
		"tenant_id":  tenantID,
	})
}
