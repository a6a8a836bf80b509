// Package metrics defines the sinks that observe scheduling activity.
//
// Every sink records optimizer runs. Sinks may additionally implement the
// recorder interfaces for appointments, unscheduled procedures,
// cancellations and notifications; MultiSink forwards each event to the
// sinks that support it. NewMetricsSink builds sinks from configuration
// using factories registered by infra/metrics.
package metrics
