package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ishamir/crlmon/crl"
)

// MetricsSink rewrites a textfile-exporter exposition file every run. The
// exporter must only ever observe the latest run, so the file is replaced,
// never appended to.
type MetricsSink struct {
	Path string
}

func (s *MetricsSink) Report(ref crl.Reference, status crl.Status, _ string, info crl.Info) error {
	if err := s.Reset(); err != nil {
		return err
	}

	return s.Write(ref,
		crl.UnixSeconds(info.Creation),
		crl.UnixSeconds(info.Overlap),
		crl.UnixSeconds(info.Expiration),
		status)
}

// Reset truncates the metrics file, creating it and its parent directory
// when absent. Safe to call repeatedly.
func (s *MetricsSink) Reset() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("could not create metrics directory: %w", err)
	}

	if err := os.WriteFile(s.Path, nil, 0o644); err != nil {
		return fmt.Errorf("could not truncate metrics file: %w", err)
	}

	return nil
}

// Write replaces the metrics file with the four gauges for this run, keyed
// by the CRL name without its .crl extension. A zero timestamp means no CRL
// could be examined this run.
func (s *MetricsSink) Write(ref crl.Reference, creation, overlap, expiration int64, status crl.Status) error {
	labels := []string{"crl_name"}

	statusGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crl_status",
		Help: "Provides a viewpoint about the CRL",
	}, labels)
	creationGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crl_creation_date",
		Help: "Unix timestamp of the CRL's last update",
	}, labels)
	overlapGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crl_overlapping_date",
		Help: "Unix timestamp at which the CRL enters its overlap window",
	}, labels)
	expirationGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crl_expiration_date",
		Help: "Unix timestamp of the CRL's next update",
	}, labels)

	registry := prometheus.NewRegistry()
	for _, collector := range []prometheus.Collector{statusGauge, creationGauge, overlapGauge, expirationGauge} {
		if err := registry.Register(collector); err != nil {
			return fmt.Errorf("could not register gauge: %w", err)
		}
	}

	name := strings.TrimSuffix(ref.Name, ".crl")

	statusGauge.WithLabelValues(name).Set(float64(status))
	creationGauge.WithLabelValues(name).Set(float64(creation))
	overlapGauge.WithLabelValues(name).Set(float64(overlap))
	expirationGauge.WithLabelValues(name).Set(float64(expiration))

	if err := prometheus.WriteToTextfile(s.Path, registry); err != nil {
		return fmt.Errorf("could not write metrics file: %w", err)
	}

	return nil
}
