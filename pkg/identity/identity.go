// Package identity derives stable dedup keys for canonical listings and
// filters duplicates within and across batches
package identity

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// Derive builds the listing identity for a canonical record. An MLS number
// wins when present; otherwise the normalized address forms the key. Returns
// "" when the record carries neither a usable MLS number nor enough address
// to identify it — such records are never duplicates of anything.
func Derive(rec *models.CanonicalRecord) string {
	if mls := normalizers.NormalizeMLSNumber(rec.StringField(catalog.FieldMLSNumber)); mls != "" {
		return "mls:" + mls
	}

	street := streetLine(rec)
	city := normalizers.NormalizeCity(rec.StringField(catalog.FieldCity))
	state := normalizers.NormalizeState(rec.StringField(catalog.FieldState))
	zip := normalizers.NormalizeZipCode(rec.StringField(catalog.FieldZipCode))

	// A street alone is not identifying, and a city/zip alone matches too
	// many listings
	if street == "" || (city == "" && zip == "") {
		return ""
	}

	return "addr:" + street + "|" + city + "|" + state + "|" + zip
}

// streetLine joins the street components into one normalized line so that
// component-mapped and parser-filled records derive the same identity
func streetLine(rec *models.CanonicalRecord) string {
	parts := []string{
		rec.StringField(catalog.FieldStreetNumber),
		rec.StringField(catalog.FieldStreetName),
		rec.StringField(catalog.FieldStreetSuffix),
		rec.StringField(catalog.FieldUnitNumber),
	}
	joined := strings.TrimSpace(strings.Join(parts, " "))
	return normalizers.NormalizeStreet(joined)
}

// identifyingInfo renders a human-readable handle for duplicate reporting
func identifyingInfo(rec *models.CanonicalRecord) string {
	if mls := rec.StringField(catalog.FieldMLSNumber); mls != "" {
		return fmt.Sprintf("MLS %s (%s row %d)", mls, rec.SourceFile, rec.RowIndex)
	}

	parts := []string{}
	for _, name := range []string{catalog.FieldStreetNumber, catalog.FieldStreetName, catalog.FieldStreetSuffix} {
		if v := rec.StringField(name); v != "" {
			parts = append(parts, v)
		}
	}
	street := strings.Join(parts, " ")
	if city := rec.StringField(catalog.FieldCity); city != "" {
		street = street + ", " + city
	}
	return fmt.Sprintf("%s (%s row %d)", street, rec.SourceFile, rec.RowIndex)
}

// Deduplicator filters duplicate listings with first-wins semantics
type Deduplicator struct{}

// NewDeduplicator creates a Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Filter classifies records in input order, each exactly once. Records with
// no derivable identity are always accepted. A record whose identity is in
// the known set is rejected with reason existing; one whose identity appeared
// earlier in the same batch is rejected with reason batch_duplicate. Accepted
// identities are added to known, so the caller's set reflects the batch when
// Filter returns.
func (d *Deduplicator) Filter(records []*models.CanonicalRecord, known map[string]bool) ([]*models.CanonicalRecord, []models.DuplicateNotice) {
	accepted := make([]*models.CanonicalRecord, 0, len(records))
	var duplicates []models.DuplicateNotice
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		id := Derive(rec)
		rec.Identity = id

		if id == "" {
			accepted = append(accepted, rec)
			continue
		}

		// Known-set check precedes the batch-seen check so the reason
		// reflects the oldest conflict
		if known[id] {
			duplicates = append(duplicates, models.DuplicateNotice{
				IdentifyingInfo: identifyingInfo(rec),
				Reason:          models.DuplicateReasonExisting,
			})
			continue
		}
		if seen[id] {
			duplicates = append(duplicates, models.DuplicateNotice{
				IdentifyingInfo: identifyingInfo(rec),
				Reason:          models.DuplicateReasonBatch,
			})
			continue
		}

		seen[id] = true
		known[id] = true
		accepted = append(accepted, rec)
	}

	return accepted, duplicates
}
