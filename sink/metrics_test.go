package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishamir/crlmon/crl"
)

func readFamilies(t *testing.T, path string) map[string]*dto.MetricFamily {
	t.Helper()

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(b))
	require.NoError(t, err)

	return families
}

func gaugeValue(t *testing.T, families map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()

	family, ok := families[name]
	require.True(t, ok, "missing metric family %s", name)
	require.Len(t, family.Metric, 1)

	return family.Metric[0].GetGauge().GetValue()
}

func TestMetricsSinkResetIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile", "crl_status.prom")
	s := &MetricsSink{Path: path}

	require.NoError(t, s.Reset())
	require.NoError(t, s.Reset())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestMetricsSinkReplacesPriorRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crl_status.prom")
	s := &MetricsSink{Path: path}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root.crl"}

	require.NoError(t, s.Reset())
	require.NoError(t, s.Write(ref, 100, 200, 300, crl.StatusValid))

	require.NoError(t, s.Reset())
	require.NoError(t, s.Write(ref, 400, 500, 600, crl.StatusOverlapping))

	families := readFamilies(t, path)

	require.Len(t, families, 4)
	assert.Equal(t, float64(crl.StatusOverlapping), gaugeValue(t, families, "crl_status"))
	assert.Equal(t, float64(400), gaugeValue(t, families, "crl_creation_date"))
	assert.Equal(t, float64(500), gaugeValue(t, families, "crl_overlapping_date"))
	assert.Equal(t, float64(600), gaugeValue(t, families, "crl_expiration_date"))
}

func TestMetricsSinkStripsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crl_status.prom")
	s := &MetricsSink{Path: path}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root.crl"}

	require.NoError(t, s.Reset())
	require.NoError(t, s.Write(ref, 1, 2, 3, crl.StatusValid))

	families := readFamilies(t, path)
	labels := families["crl_status"].Metric[0].GetLabel()

	require.Len(t, labels, 1)
	assert.Equal(t, "crl_name", labels[0].GetName())
	assert.Equal(t, "root", labels[0].GetValue())
}

func TestMetricsSinkKeepsPlainName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crl_status.prom")
	s := &MetricsSink{Path: path}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root"}

	require.NoError(t, s.Reset())
	require.NoError(t, s.Write(ref, 1, 2, 3, crl.StatusValid))

	families := readFamilies(t, path)

	assert.Equal(t, "root", families["crl_status"].Metric[0].GetLabel()[0].GetValue())
}

func TestMetricsSinkReportZeroSentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crl_status.prom")
	s := &MetricsSink{Path: path}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root.crl"}

	// No temporal facts available: the unreachable run still writes the
	// gauges, with the zero sentinel for every timestamp.
	require.NoError(t, s.Report(ref, crl.StatusUnreachable, "CRL 'root.crl' is UNREACHABLE.", crl.Info{}))

	families := readFamilies(t, path)

	assert.Equal(t, float64(crl.StatusUnreachable), gaugeValue(t, families, "crl_status"))
	assert.Zero(t, gaugeValue(t, families, "crl_creation_date"))
	assert.Zero(t, gaugeValue(t, families, "crl_overlapping_date"))
	assert.Zero(t, gaugeValue(t, families, "crl_expiration_date"))
}

func TestMetricsSinkReportWritesTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crl_status.prom")
	s := &MetricsSink{Path: path}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root.crl"}

	creation := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	info := crl.Info{
		Creation:   creation,
		Overlap:    creation.Add(7 * 24 * time.Hour),
		Expiration: creation.Add(10 * 24 * time.Hour),
	}

	require.NoError(t, s.Report(ref, crl.StatusValid, "ok", info))

	families := readFamilies(t, path)

	assert.Equal(t, float64(creation.Unix()), gaugeValue(t, families, "crl_creation_date"))
	assert.Equal(t, float64(info.Overlap.Unix()), gaugeValue(t, families, "crl_overlapping_date"))
	assert.Equal(t, float64(info.Expiration.Unix()), gaugeValue(t, families, "crl_expiration_date"))
}
