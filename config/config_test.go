package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `optimizer:
  workers: 4
  assigner: lp
  specialist_categories: ["EKG Room"]
store:
  driver: sqlite
  dsn: clinic.db
run_log:
  backend: rotating
  path: runs.jsonl
  max_backups: 3
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  qos: 1
api:
  addr: ":8081"
  token: "secret"
logging:
  level: debug
sentry:
  dsn: ""
  environment: test
remote:
  url: "http://scheduler:8080"
  auth:
    token_url: "http://idp/token"
    client_id: "cli"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"workers", cfg.Optimizer.Workers, 4},
		{"assigner", cfg.Optimizer.Assigner, "lp"},
		{"categories", len(cfg.Optimizer.SpecialistCategories), 1},
		{"lp_max_pairs default", cfg.Optimizer.LPMaxPairs, 2000},
		{"dsn", cfg.Store.DSN, "clinic.db"},
		{"run_log backend", cfg.RunLog.Backend, "rotating"},
		{"run_log backups", cfg.RunLog.MaxBackups, 3},
		{"run_log size default", cfg.RunLog.MaxSizeMB, 10},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"topic prefix default", cfg.MQTT.TopicPrefix, "procsched"},
		{"api addr", cfg.API.Addr, ":8081"},
		{"api token", cfg.API.Token, "secret"},
		{"level", cfg.Logging.Level, "debug"},
		{"sentry env", cfg.Sentry.Environment, "test"},
		{"remote url", cfg.Remote.URL, "http://scheduler:8080"},
		{"remote client", cfg.Remote.Auth.ClientID, "cli"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"api": {"addr": ":9000"}, "store": {"dsn": "a.db"}}`)
	t.Setenv("PS_STORE__DSN", "b.db")
	t.Setenv("PS_OPTIMIZER__ASSIGNER", "lp")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b.db", cfg.Store.DSN)
	assert.Equal(t, "lp", cfg.Optimizer.Assigner)
	assert.Equal(t, ":9000", cfg.API.Addr)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "greedy", cfg.Optimizer.Assigner)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "jsonl", cfg.RunLog.Backend)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"assigner": "optimizer:\n  assigner: magic\n",
		"driver":   "store:\n  driver: oracle\n",
		"backend":  "run_log:\n  backend: csv\n",
		"level":    "logging:\n  level: loud\n",
		"qos":      "mqtt:\n  broker: tcp://b:1883\n  qos: 5\n",
		"remote":   "remote:\n  url: not a url\n",
		"sample":   "sentry:\n  traces_sample_rate: 2\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)
}
