package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/anchor/ext"
	"github.com/xraph/anchor/item"
)

// meterName is the instrumentation scope name for anchor observability.
const meterName = "github.com/xraph/anchor/observability"

// Compile-time interface checks.
var (
	_ ext.Extension          = (*MetricsExtension)(nil)
	_ ext.ItemEnqueued       = (*MetricsExtension)(nil)
	_ ext.ItemCompleted      = (*MetricsExtension)(nil)
	_ ext.ItemFailed         = (*MetricsExtension)(nil)
	_ ext.PumpCompleted      = (*MetricsExtension)(nil)
	_ ext.OperationStarted   = (*MetricsExtension)(nil)
	_ ext.OperationCompleted = (*MetricsExtension)(nil)
)

// MetricsExtension records dispatcher-wide lifecycle metrics via the
// OTel metric API. Register it as an anchor extension to automatically
// track enqueue rates, completion counts, failure rates, pump batch
// sizes, and the in-flight operation gauge.
type MetricsExtension struct {
	itemsEnqueued  metric.Int64Counter
	itemsCompleted metric.Int64Counter
	itemsFailed    metric.Int64Counter
	pumpBatches    metric.Int64Counter
	pumpBatchSize  metric.Int64Histogram
	opsInFlight    metric.Int64UpDownCounter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. With no provider configured the instruments are noops.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. Use this variant to inject a specific MeterProvider
// for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// On instrument-creation error the OTel API returns noop
	// instruments, so errors are intentionally discarded.
	itemsEnqueued, _ := meter.Int64Counter(
		"anchor.items.enqueued",
		metric.WithDescription("Total work items appended to the pending queue"),
		metric.WithUnit("{item}"),
	)
	itemsCompleted, _ := meter.Int64Counter(
		"anchor.items.completed",
		metric.WithDescription("Total work items that completed successfully"),
		metric.WithUnit("{item}"),
	)
	itemsFailed, _ := meter.Int64Counter(
		"anchor.items.failed",
		metric.WithDescription("Total work items that returned an error or panicked"),
		metric.WithUnit("{item}"),
	)
	pumpBatches, _ := meter.Int64Counter(
		"anchor.pump.batches",
		metric.WithDescription("Total non-empty pump batches executed"),
		metric.WithUnit("{batch}"),
	)
	pumpBatchSize, _ := meter.Int64Histogram(
		"anchor.pump.batch_size",
		metric.WithDescription("Number of items drained per pump call"),
		metric.WithUnit("{item}"),
	)
	opsInFlight, _ := meter.Int64UpDownCounter(
		"anchor.operations.inflight",
		metric.WithDescription("Asynchronous operations started but not yet completed"),
		metric.WithUnit("{operation}"),
	)

	return &MetricsExtension{
		itemsEnqueued:  itemsEnqueued,
		itemsCompleted: itemsCompleted,
		itemsFailed:    itemsFailed,
		pumpBatches:    pumpBatches,
		pumpBatchSize:  pumpBatchSize,
		opsInFlight:    opsInFlight,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Item lifecycle hooks ────────────────────────────

// OnItemEnqueued implements ext.ItemEnqueued.
func (m *MetricsExtension) OnItemEnqueued(ctx context.Context, _ *item.Item) error {
	m.itemsEnqueued.Add(ctx, 1)
	return nil
}

// OnItemCompleted implements ext.ItemCompleted.
func (m *MetricsExtension) OnItemCompleted(ctx context.Context, _ *item.Item, _ time.Duration) error {
	m.itemsCompleted.Add(ctx, 1)
	return nil
}

// OnItemFailed implements ext.ItemFailed.
func (m *MetricsExtension) OnItemFailed(ctx context.Context, _ *item.Item, _ error) error {
	m.itemsFailed.Add(ctx, 1)
	return nil
}

// ── Pump lifecycle hooks ────────────────────────────

// OnPumpCompleted implements ext.PumpCompleted.
func (m *MetricsExtension) OnPumpCompleted(ctx context.Context, batchSize int, _ time.Duration) error {
	m.pumpBatches.Add(ctx, 1)
	m.pumpBatchSize.Record(ctx, int64(batchSize))
	return nil
}

// ── Operation tracking hooks ────────────────────────

// OnOperationStarted implements ext.OperationStarted.
func (m *MetricsExtension) OnOperationStarted(ctx context.Context, _ int64) error {
	m.opsInFlight.Add(ctx, 1)
	return nil
}

// OnOperationCompleted implements ext.OperationCompleted.
func (m *MetricsExtension) OnOperationCompleted(ctx context.Context, _ int64) error {
	m.opsInFlight.Add(ctx, -1)
	return nil
}
