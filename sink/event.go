package sink

import "github.com/ishamir/crlmon/crl"

// EventSink reports each run to the platform event log under a fixed source
// name: the Windows event log on Windows, syslog elsewhere. The event
// identifier is the numeric status code.
type EventSink struct {
	Source string

	// Emit overrides the platform event writer. Tests use it to capture
	// events without touching the host's event log.
	Emit func(severity crl.Severity, id crl.Status, message string) error
}

func (s *EventSink) Report(_ crl.Reference, status crl.Status, message string, _ crl.Info) error {
	emit := s.Emit
	if emit == nil {
		emit = s.platformEmit
	}

	return emit(status.Severity(), status, message)
}
