package repository

import (
	"context"
	"fmt"
	"regexp"

	"gitlab.com/yelinaung/invoicekit/internal/logger"
)

// RepairOutcome describes what Repair did to a stored collection.
type RepairOutcome string

// Repair outcomes.
const (
	RepairValid       RepairOutcome = "valid"
	RepairInitialized RepairOutcome = "initialized"
	RepairSalvaged    RepairOutcome = "salvaged"
	RepairReset       RepairOutcome = "reset"
)

// RepairResult reports the state of one collection after Repair.
type RepairResult struct {
	Key     string        `json:"key"`
	Outcome RepairOutcome `json:"outcome"`
	Count   int           `json:"count"`
	Dropped int           `json:"dropped"`
}

// KeyReport is a read-only view of a stored collection.
type KeyReport struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
	Bytes   int    `json:"bytes"`
	Valid   bool   `json:"valid"`
	Count   int    `json:"count"`
	Invalid int    `json:"invalid"`
	Preview string `json:"preview"`
}

var embeddedArray = regexp.MustCompile(`(?s)\[.*\]`)

// Repair rewrites the stored collection into a decodable array. A valid value
// is left untouched. A missing or blank value becomes an empty array. An array
// holding invalid records is rewritten without them. A value that is not an
// array is salvaged when it embeds one, and reset to an empty array otherwise.
func (c *Collection[T]) Repair(ctx context.Context) (RepairResult, error) {
	result := RepairResult{Key: c.key()}

	raw, ok, err := c.kv.Get(ctx, c.key())
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrStorageRead, c.key(), err)
	}

	if !ok || isBlank(raw) {
		if err := c.write(ctx, nil); err != nil {
			return result, err
		}
		result.Outcome = RepairInitialized
		return result, nil
	}

	items, skipped, err := decode[T](raw)
	if err == nil && len(skipped) == 0 {
		result.Outcome = RepairValid
		result.Count = len(items)
		return result, nil
	}
	if err != nil {
		if match := embeddedArray.FindString(raw); match != "" {
			items, skipped, err = decode[T](match)
		}
	}

	if err == nil {
		if err := c.write(ctx, items); err != nil {
			return result, err
		}
		c.log().Info().
			Int("count", len(items)).
			Int("dropped", len(skipped)).
			Msg("Salvaged corrupted collection")
		result.Outcome = RepairSalvaged
		result.Count = len(items)
		result.Dropped = len(skipped)
		return result, nil
	}

	if err := c.write(ctx, nil); err != nil {
		return result, err
	}
	c.log().Warn().Str("stored", logger.SanitizeText(raw)).Msg("Reset unrecoverable collection")
	result.Outcome = RepairReset
	return result, nil
}

// Inspect reports the raw state of the stored collection without changing it.
func (c *Collection[T]) Inspect(ctx context.Context) (KeyReport, error) {
	report := KeyReport{Key: c.key()}

	raw, ok, err := c.kv.Get(ctx, c.key())
	if err != nil {
		return report, fmt.Errorf("%w: %s: %w", ErrStorageRead, c.key(), err)
	}
	if !ok {
		return report, nil
	}

	report.Present = true
	report.Bytes = len(raw)
	report.Preview = logger.SanitizeText(raw)
	if isBlank(raw) {
		report.Valid = true
		return report, nil
	}
	if items, skipped, err := decode[T](raw); err == nil {
		report.Valid = len(skipped) == 0
		report.Count = len(items)
		report.Invalid = len(skipped)
	}
	return report, nil
}
