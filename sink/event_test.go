package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishamir/crlmon/crl"
)

func TestEventSinkReport(t *testing.T) {
	var (
		gotSeverity crl.Severity
		gotID       crl.Status
		gotMessage  string
	)

	s := &EventSink{
		Source: "CRL Monitoring",
		Emit: func(severity crl.Severity, id crl.Status, message string) error {
			gotSeverity, gotID, gotMessage = severity, id, message
			return nil
		},
	}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root.crl"}

	err := s.Report(ref, crl.StatusOverlapping, "CRL 'root.crl' entered OVERLAPPING state.", crl.Info{})

	require.NoError(t, err)
	assert.Equal(t, crl.SeverityWarning, gotSeverity)
	assert.Equal(t, crl.StatusOverlapping, gotID)
	assert.Equal(t, "CRL 'root.crl' entered OVERLAPPING state.", gotMessage)
}

func TestEventSinkReportError(t *testing.T) {
	s := &EventSink{
		Source: "CRL Monitoring",
		Emit: func(crl.Severity, crl.Status, string) error {
			return errors.New("event log unavailable")
		},
	}

	ref := crl.Reference{Server: "cdp.example.com", Path: crl.PathCertEnroll, Name: "root.crl"}

	assert.Error(t, s.Report(ref, crl.StatusValid, "msg", crl.Info{}))
}
