// Package infra holds the adapters behind the core interfaces: the SQL
// record store, MQTT appointment notifications, Prometheus and InfluxDB
// metric sinks, the zerolog logger and Sentry monitoring.
package infra
