package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ishamir/crlmon/crl"
)

// LogSink appends one block per run to a plain-text monitoring log. The log
// only ever grows; prior runs stay in place.
type LogSink struct {
	Path string
}

func (s *LogSink) Report(ref crl.Reference, status crl.Status, message string, _ crl.Info) error {
	return s.Append(ref, message, status)
}

// Append writes a timestamped block for one run. The parent directory is
// created when missing; every failure is returned to the caller.
func (s *LogSink) Append(ref crl.Reference, message string, status crl.Status) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("could not create log directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}

	block := fmt.Sprintf("\n%s:\n---- %s\n---- status code: %d\n---- time %s\n",
		ref.URL(), message, status, time.Now().Format(time.RFC3339))

	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("could not append to log file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close log file: %w", err)
	}

	return nil
}
