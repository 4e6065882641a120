package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config collects the sink targets and fetch behavior. Values come from the
// environment (a .env file is honored) with defaults suited to a cron- or
// scheduler-driven deployment.
type Config struct {
	LogFile       string        // CRLMON_LOG_FILE
	MetricsFile   string        // CRLMON_METRICS_FILE
	EventSource   string        // CRLMON_EVENT_SOURCE
	FetchTimeout  time.Duration // CRLMON_FETCH_TIMEOUT
	DBPath        string        // CRLMON_DB
	ListenAddr    string        // CRLMON_LISTEN_ADDR
	CheckInterval time.Duration // CRLMON_CHECK_INTERVAL
}

func LoadConfig() Config {
	return Config{
		LogFile:       getenv("CRLMON_LOG_FILE", "/var/log/pki/crl_monitoring.txt"),
		MetricsFile:   getenv("CRLMON_METRICS_FILE", "/var/lib/node_exporter/textfile/crl_status.prom"),
		EventSource:   getenv("CRLMON_EVENT_SOURCE", "CRL Monitoring"),
		FetchTimeout:  getduration("CRLMON_FETCH_TIMEOUT", 10*time.Second),
		DBPath:        getenv("CRLMON_DB", "crlmon.db"),
		ListenAddr:    getenv("CRLMON_LISTEN_ADDR", "127.0.0.1:8080"),
		CheckInterval: getduration("CRLMON_CHECK_INTERVAL", 24*time.Hour),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("Invalid %s %q, using %s", key, v, fallback)
		return fallback
	}

	return d
}
