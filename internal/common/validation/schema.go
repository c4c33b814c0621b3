// internal/common/validation/schema.go

// Package validation checks scraped snapshot batches at the ingestion
// boundary before they reach the reconciler. A batch that fails here is
// rejected whole; partial batches never enter the lifecycle store.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/models"
)

const snapshotBatchSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "brand", "model", "sourceSite", "observedAt"],
		"properties": {
			"id":         {"type": "string", "minLength": 1},
			"brand":      {"type": "string", "minLength": 1},
			"model":      {"type": "string", "minLength": 1},
			"type":       {"type": "string", "enum": ["acoustic", "electric", "bass", ""]},
			"year":       {"type": ["integer", "null"], "minimum": 1800, "maximum": 2100},
			"condition":  {"type": "string"},
			"price":      {"type": ["number", "null"], "minimum": 0},
			"sourceSite": {"type": "string", "minLength": 1},
			"url":        {"type": "string"},
			"observedAt": {"type": "string", "format": "date-time"},
			"statusHint": {"type": "string", "enum": ["active", "on_hold", ""]}
		}
	}
}`

var batchSchemaLoader = gojsonschema.NewStringLoader(snapshotBatchSchema)

// ValidateSnapshotBatch validates a raw JSON snapshot batch against the
// feed schema and rejects duplicate listing IDs within the batch.
func ValidateSnapshotBatch(raw []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(batchSchemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewSnapshotBatchInvalidError(fmt.Sprintf("validation error: %v", err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewSnapshotBatchInvalidError(strings.Join(errs, "; "))
	}

	return nil
}

// CheckDuplicateIDs rejects batches that carry the same listing ID twice.
// The reconciler assumes at most one snapshot per ID per cycle.
func CheckDuplicateIDs(snapshots []models.ListingSnapshot) error {
	seen := make(map[string]bool, len(snapshots))
	for _, s := range snapshots {
		if seen[s.ID] {
			return apperrors.NewSnapshotBatchInvalidError(
				fmt.Sprintf("duplicate listing id in batch: %s", s.ID))
		}
		seen[s.ID] = true
	}
	return nil
}
