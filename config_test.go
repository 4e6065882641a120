package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "/var/log/pki/crl_monitoring.txt", cfg.LogFile)
	assert.Equal(t, "/var/lib/node_exporter/textfile/crl_status.prom", cfg.MetricsFile)
	assert.Equal(t, "CRL Monitoring", cfg.EventSource)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CheckInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CRLMON_LOG_FILE", "/tmp/log.txt")
	t.Setenv("CRLMON_FETCH_TIMEOUT", "3s")

	cfg := LoadConfig()

	assert.Equal(t, "/tmp/log.txt", cfg.LogFile)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
}

func TestLoadConfigBadDuration(t *testing.T) {
	t.Setenv("CRLMON_FETCH_TIMEOUT", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
}
