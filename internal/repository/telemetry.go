package repository

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "gitlab.com/yelinaung/invoicekit/internal/repository"

var (
	tracer    = otel.Tracer(instrumentationName)
	selfHeals = newSelfHealCounter()
)

func newSelfHealCounter() metric.Int64Counter {
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"invoicekit.repository.self_heals",
		metric.WithDescription("Collections reset to an empty array after failing to decode"),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
}
