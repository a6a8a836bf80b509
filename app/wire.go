package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/procsched/config"
	coremetrics "github.com/kilianp07/procsched/core/metrics"
	"github.com/kilianp07/procsched/core/notify"
	"github.com/kilianp07/procsched/core/runlog"
	"github.com/kilianp07/procsched/infra/logger"
	"github.com/kilianp07/procsched/infra/metrics"
	"github.com/kilianp07/procsched/infra/mqtt"
	"github.com/kilianp07/procsched/infra/sqlstore"
	"github.com/kilianp07/procsched/internal/eventbus"
)

// New creates a Service from the configuration: SQL record store, run log,
// metrics sinks and, when a broker is configured, the MQTT notifier.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	st, err := sqlstore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}
	runs, err := runlog.Open(cfg.RunLog)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("run log: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		_ = runs.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	var n notify.Notifier = notify.Nop{}
	if cfg.MQTT.Enabled() {
		mn, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			_ = st.Close()
			_ = runs.Close()
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		n = mn
	}
	return NewService(Options{
		Optimizer: cfg.Optimizer,
		Store:     st,
		RunLog:    runs,
		Metrics:   sink,
		Bus:       eventbus.New(),
		Notifier:  n,
		Logger:    logger.New("service"),
	})
}

// Start runs the background parts of the service until ctx is cancelled:
// the event collector feeding the metrics sink and, when addr is set, the
// Prometheus endpoint.
func (s *Service) Start(ctx context.Context, promAddr string) {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if promAddr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, promAddr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}
