// Package repository owns the persisted collections. Every collection is read
// and written as a whole JSON array under its kind's storage key.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/invoicekit/internal/kvstore"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

var (
	// ErrStorageRead wraps durable store failures while loading. Loads still
	// return an empty collection alongside it.
	ErrStorageRead = errors.New("storage read failed")

	// ErrStorageWrite wraps durable store failures while saving. The write did
	// not apply.
	ErrStorageWrite = errors.New("storage write failed")
)

const emptyCollection = "[]"

// Entity is a record stored in a collection.
type Entity interface {
	EntityID() string
	Validate() error
}

// Collection is the repository for one entity kind.
type Collection[T Entity] struct {
	kv   kvstore.Store
	kind models.Kind

	// afterLoad may correct decoded records in place and reports whether it
	// changed anything; changes are persisted before Load returns.
	afterLoad func(items []T) bool
}

// NewCollection creates a repository for kind backed by kv.
func NewCollection[T Entity](kv kvstore.Store, kind models.Kind) *Collection[T] {
	return &Collection[T]{kv: kv, kind: kind}
}

// Kind returns the entity kind of the collection.
func (c *Collection[T]) Kind() models.Kind {
	return c.kind
}

func (c *Collection[T]) key() string {
	return c.kind.StorageKey()
}

func (c *Collection[T]) log() *zerolog.Logger {
	l := logger.WithComponent("repository").With().Str("kind", string(c.kind)).Logger()
	return &l
}

// Load returns the stored collection. Missing, blank, "null" and "undefined"
// values yield an empty collection. Values that are not a JSON array are reset
// to an empty array and yield an empty collection; decode problems never reach
// the caller. Elements that fail to decode or validate are skipped and left in
// storage for Repair. A failing durable store yields an empty collection
// together with an ErrStorageRead error.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	ctx, span := tracer.Start(ctx, "repository.Load",
		trace.WithAttributes(attribute.String("kind", string(c.kind))))
	defer span.End()

	raw, ok, err := c.kv.Get(ctx, c.key())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		c.log().Error().Err(err).Msg("Failed to read collection, returning empty")
		return []T{}, fmt.Errorf("%w: %s: %w", ErrStorageRead, c.key(), err)
	}
	if !ok || isBlank(raw) {
		return []T{}, nil
	}

	items, skipped, err := decode[T](raw)
	if err != nil {
		c.selfHeal(ctx, raw, err)
		return []T{}, nil
	}
	for _, cause := range skipped {
		c.log().Warn().Err(cause).Msg("Skipping invalid record")
	}

	if c.afterLoad != nil && c.afterLoad(items) {
		if len(skipped) > 0 {
			c.log().Warn().Int("skipped", len(skipped)).Msg("Not persisting corrected collection with invalid records")
		} else if err := c.write(ctx, items); err != nil {
			c.log().Warn().Err(err).Msg("Failed to persist corrected collection")
		}
	}

	span.SetAttributes(attribute.Int("count", len(items)), attribute.Int("skipped", len(skipped)))
	return items, nil
}

// SaveAll overwrites the stored collection with items. The write runs to
// completion even when ctx is cancelled, so a collection is never left torn.
func (c *Collection[T]) SaveAll(ctx context.Context, items []T) error {
	ctx, span := tracer.Start(ctx, "repository.SaveAll",
		trace.WithAttributes(attribute.String("kind", string(c.kind)), attribute.Int("count", len(items))))
	defer span.End()

	if err := c.write(ctx, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		c.log().Error().Err(err).Int("count", len(items)).Msg("Failed to save collection")
		return err
	}
	return nil
}

// FindByID loads the collection and returns the record with id.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	items, err := c.Load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	item, ok := Find(items, id)
	return item, ok, nil
}

// Upsert replaces the record with the same id, or appends it.
func (c *Collection[T]) Upsert(ctx context.Context, item T) error {
	items, err := c.Load(ctx)
	if err != nil {
		return err
	}
	return c.SaveAll(ctx, Upsert(items, item))
}

// RemoveByID deletes the record with id and reports whether it existed.
func (c *Collection[T]) RemoveByID(ctx context.Context, id string) (bool, error) {
	items, err := c.Load(ctx)
	if err != nil {
		return false, err
	}
	next, removed := Remove(items, id)
	if !removed {
		return false, nil
	}
	return true, c.SaveAll(ctx, next)
}

func (c *Collection[T]) write(ctx context.Context, items []T) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStorageWrite, c.key(), err)
	}
	if err := c.kv.Set(context.WithoutCancel(ctx), c.key(), data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStorageWrite, c.key(), err)
	}
	return nil
}

func (c *Collection[T]) selfHeal(ctx context.Context, raw string, cause error) {
	selfHeals.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(c.kind))))
	c.log().Warn().
		Err(cause).
		Str("stored", logger.SanitizeText(raw)).
		Msg("Invalid collection data, resetting to empty array")
	if err := c.kv.Set(context.WithoutCancel(ctx), c.key(), emptyCollection); err != nil {
		c.log().Error().Err(err).Msg("Failed to reset invalid collection")
	}
}

// Index returns the position of the record with id, or -1.
func Index[T Entity](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
}

// Find returns the record with id.
func Find[T Entity](items []T, id string) (T, bool) {
	if i := Index(items, id); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

// Upsert returns a copy of items with item replacing the record that has the
// same id, or appended when there is none.
func Upsert[T Entity](items []T, item T) []T {
	next := slices.Clone(items)
	if i := Index(next, item.EntityID()); i >= 0 {
		next[i] = item
		return next
	}
	return append(next, item)
}

// Remove returns a copy of items without the record with id.
func Remove[T Entity](items []T, id string) ([]T, bool) {
	i := Index(items, id)
	if i < 0 {
		return items, false
	}
	return slices.Delete(slices.Clone(items), i, i+1), true
}

func isBlank(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "null", "undefined":
		return true
	}
	return false
}

// decode parses raw as a JSON array. Elements that do not decode into T or
// fail Validate are returned as errors alongside the good ones; only a value
// that is not an array at all is an error.
func decode[T Entity](raw string) ([]T, []error, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, nil, fmt.Errorf("not a JSON array: %w", err)
	}
	if elems == nil {
		return nil, nil, errors.New("not a JSON array: null")
	}

	items := make([]T, 0, len(elems))
	var skipped []error
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			skipped = append(skipped, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		if err := item.Validate(); err != nil {
			skipped = append(skipped, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func encode[T Entity](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
