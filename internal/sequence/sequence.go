// Package sequence issues human-readable invoice numbers.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/kvstore"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// Prefix starts every invoice number.
const Prefix = "INV-"

// Generator derives invoice numbers from the counter stored under
// models.LastInvoiceNumberKey.
type Generator struct {
	kv  kvstore.Store
	now func() time.Time
	mu  sync.Mutex
}

// NewGenerator creates a generator. A nil clock selects time.Now.
func NewGenerator(kv kvstore.Store, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{kv: kv, now: now}
}

// Next increments the stored counter and returns the formatted number, such
// as INV-0001. A missing or non-numeric counter counts as zero. When the
// counter cannot be read or written, Next returns a fallback number built
// from the last four digits of the current Unix millisecond timestamp and
// leaves the counter as it was.
func (g *Generator) Next(ctx context.Context) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	log := logger.WithComponent("sequence")

	raw, _, err := g.kv.Get(ctx, models.LastInvoiceNumberKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read invoice counter, using fallback number")
		return g.fallback()
	}

	next := parseCounter(raw) + 1
	if err := g.kv.Set(context.WithoutCancel(ctx), models.LastInvoiceNumberKey, strconv.FormatInt(next, 10)); err != nil {
		log.Warn().Err(err).Msg("Failed to persist invoice counter, using fallback number")
		return g.fallback()
	}
	return Format(next)
}

// Format renders n as an invoice number padded to at least four digits.
func Format(n int64) string {
	return fmt.Sprintf("%s%04d", Prefix, n)
}

func parseCounter(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (g *Generator) fallback() string {
	ms := strconv.FormatInt(g.now().UnixMilli(), 10)
	if len(ms) > 4 {
		ms = ms[len(ms)-4:]
	}
	return Prefix + ms
}
