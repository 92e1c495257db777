// Package store talks to the downstream listing store, the system of record
// accepted listings are pushed to after staging
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/appcontext"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	// DefaultTimeout is the default request timeout
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	// ErrNotFound is returned when the store does not know the listing
	ErrNotFound = errors.New("listing not found in store")
	// ErrFailed is returned when the store rejects or cannot process a push
	ErrFailed = errors.New("store request failed")
)

// StoredListing is the store's view of a pushed listing
type StoredListing struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Client pushes accepted listings to the external store
type Client interface {
	PushListing(ctx context.Context, tenantID string, listing models.StagedListing) (*StoredListing, error)
}

// Config holds store client configuration
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// HTTPClient is the production store client
type HTTPClient struct {
	client  *http.Client
	baseURL string
	logger  ectologger.Logger
}

// NewHTTPClient creates a store client
func NewHTTPClient(cfg Config, logger ectologger.Logger) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:    cfg.MaxIdleConns,
		IdleConnTimeout: cfg.IdleConnTimeout,
	}

	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// listingPayload is the store's external schema. Canonical camelCase names
// map to the store's snake_case fields here and nowhere else.
type listingPayload struct {
	TenantID    string          `json:"tenant_id"`
	MLSNumber   string          `json:"mls_number,omitempty"`
	Identity    string          `json:"identity,omitempty"`
	Fields      json.RawMessage `json:"fields"`
	SourceFile  string          `json:"source_file"`
	RowIndex    int             `json:"row_index"`
	Fingerprint string          `json:"fingerprint"`
	Completion  int             `json:"completion"`
}

// PushListing sends one staged listing to the store and returns the stored
// row. A 404 maps to ErrNotFound; any other non-2xx maps to ErrFailed.
func (c *HTTPClient) PushListing(ctx context.Context, tenantID string, listing models.StagedListing) (*StoredListing, error) {
	ctx, span := tracing.StartSpan(ctx, "store.HTTPClient.PushListing")
	defer span.End()

	payload := listingPayload{
		TenantID:    tenantID,
		MLSNumber:   listing.MLSNumber,
		Identity:    listing.Identity,
		Fields:      listing.Data,
		SourceFile:  listing.SourceFile,
		RowIndex:    listing.RowIndex,
		Fingerprint: listing.Fingerprint,
		Completion:  listing.Completion,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/listings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	if requestID := appcontext.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	if traceParent := tracing.GetTraceParent(ctx); traceParent != "" {
		req.Header.Set("traceparent", traceParent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("Store request failed")
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	defer resp.Body.Close()

	metrics.StoreRequestDuration.WithLabelValues(http.MethodPost, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read store response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Error("Store rejected listing")
		return nil, fmt.Errorf("%w: status %d", ErrFailed, resp.StatusCode)
	}

	var stored StoredListing
	if err := json.Unmarshal(respBody, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode store response: %w", err)
	}

	return &stored, nil
}
