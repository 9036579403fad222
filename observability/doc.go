// Package observability provides a ready-made metrics extension for
// anchor built on the OpenTelemetry metric API.
//
// Register [MetricsExtension] with a dispatcher to record enqueue,
// completion, and failure counts, pump batch sizes, and an up-down
// gauge of in-flight asynchronous operations:
//
//	d, _ := anchor.New(
//	    anchor.WithExtension(observability.NewMetricsExtension()),
//	)
//
// With no MeterProvider configured globally the instruments are noops
// and the extension adds negligible overhead.
package observability
