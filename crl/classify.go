package crl

import (
	"fmt"
	"time"
)

// Status is a CRL lifecycle state. The numeric values are fixed: they are
// written to the metrics file and used as platform event identifiers.
type Status int

const (
	StatusValid         Status = 1  // valid, before the overlap window
	StatusOverlapping   Status = 2  // past next publish, not yet expired
	StatusExpired       Status = 3  // past expiration
	StatusUnreachable   Status = 4  // the CDP did not return the CRL
	StatusLBValid       Status = 5  // reserved for load-balancer level checks
	StatusLBUnreachable Status = 6  // reserved for load-balancer level checks
	StatusBroken        Status = 10 // validity dates inconsistent or CRL undecodable
)

// Severity classes map onto platform event-log entry types.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Status) Severity() Severity {
	switch s {
	case StatusValid, StatusLBValid:
		return SeverityInfo
	case StatusOverlapping:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Classify maps the fetch outcome and the CRL's validity dates to a
// lifecycle status and a description. An unreachable CRL short-circuits
// before any date comparison. Dates that fit none of the orderings, such
// as an expiration before the overlap date, classify as StatusBroken.
func Classify(reachable bool, now time.Time, name string, info Info) (Status, string) {
	if !reachable {
		return StatusUnreachable, fmt.Sprintf("CRL '%s' is UNREACHABLE.", name)
	}

	switch {
	case !now.After(info.Overlap):
		return StatusValid, fmt.Sprintf("CRL '%s' is VALID, and is fresh until %s (replacement due in %d days).",
			name, info.Overlap, daysBetween(now, info.Overlap))

	case now.After(info.Overlap) && !now.After(info.Expiration):
		return StatusOverlapping, fmt.Sprintf("CRL '%s' entered OVERLAPPING state, and will expire at %s (%d days left).",
			name, info.Expiration, daysBetween(now, info.Expiration))

	case now.After(info.Expiration) && !info.Expiration.Before(info.Overlap):
		return StatusExpired, fmt.Sprintf("CRL '%s' is EXPIRED since %s (%d days ago).",
			name, info.Expiration, daysBetween(info.Expiration, now))
	}

	return StatusBroken, fmt.Sprintf("CRL '%s' returned inconsistent validity dates.", name)
}

// daysBetween returns the absolute distance between two timestamps in whole
// days.
func daysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		d = -d
	}

	return int(d.Hours() / 24)
}
