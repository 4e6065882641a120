//go:build windows

package sink

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/svc/eventlog"

	"github.com/ishamir/crlmon/crl"
)

// platformEmit registers the event source when needed and writes one record
// to the Application log. An already-registered source is tolerated; any
// other registration failure is surfaced.
func (s *EventSink) platformEmit(severity crl.Severity, id crl.Status, message string) error {
	err := eventlog.InstallAsEventCreate(s.Source, eventlog.Info|eventlog.Warning|eventlog.Error)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("could not register event source: %w", err)
	}

	log, err := eventlog.Open(s.Source)
	if err != nil {
		return fmt.Errorf("could not open event log: %w", err)
	}
	defer log.Close()

	switch severity {
	case crl.SeverityInfo:
		err = log.Info(uint32(id), message)
	case crl.SeverityWarning:
		err = log.Warning(uint32(id), message)
	default:
		err = log.Error(uint32(id), message)
	}

	if err != nil {
		return fmt.Errorf("could not write event: %w", err)
	}

	return nil
}
