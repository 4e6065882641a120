// Package sink persists classification results. Each sink owns its own
// on-disk state and fails independently of the others.
package sink

import "github.com/ishamir/crlmon/crl"

// Sink accepts one classification result per run and persists it.
type Sink interface {
	Report(ref crl.Reference, status crl.Status, message string, info crl.Info) error
}
