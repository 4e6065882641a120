//go:build !windows

package sink

import (
	"fmt"
	"log/syslog"

	"github.com/ishamir/crlmon/crl"
)

// platformEmit writes one syslog record. Opening the writer registers the
// source tag; syslog has no notion of duplicate registration, so the
// operation is naturally idempotent.
func (s *EventSink) platformEmit(severity crl.Severity, id crl.Status, message string) error {
	w, err := syslog.New(syslog.LOG_DAEMON, s.Source)
	if err != nil {
		return fmt.Errorf("could not open syslog: %w", err)
	}
	defer w.Close()

	line := fmt.Sprintf("[%d] %s", id, message)

	switch severity {
	case crl.SeverityInfo:
		err = w.Info(line)
	case crl.SeverityWarning:
		err = w.Warning(line)
	default:
		err = w.Err(line)
	}

	if err != nil {
		return fmt.Errorf("could not write event: %w", err)
	}

	return nil
}
