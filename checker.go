package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ishamir/crlmon/crl"
	"github.com/ishamir/crlmon/persistence"
	"github.com/ishamir/crlmon/sink"
)

// crlChecker drives one monitoring pass: fetch, decode, classify, then
// report through every sink in fixed order. Sinks fail independently; a
// broken sink never keeps the remaining ones from running.
//
// Runs are serialized within the process. Overlapping processes writing the
// same metrics file must be serialized by the surrounding scheduler.
type crlChecker struct {
	db     *gorm.DB
	client *http.Client
	sinks  []sink.Sink

	fetch func(ctx context.Context, client *http.Client, url string) ([]byte, int, error)

	mu sync.Mutex
}

func newChecker(db *gorm.DB, cfg Config) *crlChecker {
	return &crlChecker{
		db:     db,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		sinks: []sink.Sink{
			&sink.LogSink{Path: cfg.LogFile},
			&sink.MetricsSink{Path: cfg.MetricsFile},
			&sink.EventSink{Source: cfg.EventSource},
		},
		fetch: crl.Fetch,
	}
}

type checkResult struct {
	status  crl.Status
	message string
	info    crl.Info
}

// Check runs one monitoring pass for a single CRL. The returned error is
// non-nil when the CRL could not be examined or any sink failed; every sink
// is attempted regardless.
func (c *crlChecker) Check(ctx context.Context, ref crl.Reference) (crl.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.check(ctx, ref)

	return res.status, err
}

func (c *crlChecker) check(ctx context.Context, ref crl.Reference) (checkResult, error) {
	now := time.Now().UTC()

	var res checkResult

	body, httpStatus, fetchErr := c.fetch(ctx, c.client, ref.URL())

	if fetchErr != nil || httpStatus != http.StatusOK {
		logrus.Warnf("Could not fetch %s (HTTP %d): %v", ref.URL(), httpStatus, fetchErr)

		res.status, res.message = crl.Classify(false, now, ref.Name, crl.Info{})
	} else if info, err := crl.Parse(body); err != nil {
		logrus.Errorf("Could not decode %s: %s", ref.URL(), err)

		res.status = crl.StatusBroken
		res.message = fmt.Sprintf("CRL '%s' could not be decoded.", ref.Name)
	} else {
		res.info = info
		res.status, res.message = crl.Classify(true, now, ref.Name, info)
	}

	logrus.Infof("CRL %s: %s", ref.Name, res.message)
	if !res.info.Expiration.IsZero() {
		logrus.Infof("CRL %s expires %s", ref.Name, humanize.Time(res.info.Expiration))
	}

	var errs []error

	for _, s := range c.sinks {
		if err := s.Report(ref, res.status, res.message, res.info); err != nil {
			logrus.Errorf("Sink failure for %s: %s", ref.Name, err)
			errs = append(errs, err)
		}
	}

	switch res.status {
	case crl.StatusUnreachable, crl.StatusBroken:
		errs = append(errs, fmt.Errorf("CRL %s could not be examined (status %d)", ref.Name, res.status))
	}

	return res, errors.Join(errs...)
}

// Add puts a CRL on the watch list and checks it right away.
func (c *crlChecker) Add(ctx context.Context, ref crl.Reference) error {
	w := &persistence.WatchedCRL{
		Server: ref.Server,
		Path:   string(ref.Path),
		Name:   ref.Name,
	}

	err := c.db.WithContext(ctx).
		FirstOrCreate(w, "server = ? AND path = ? AND name = ?", ref.Server, string(ref.Path), ref.Name).Error
	if err != nil {
		return err
	}

	if _, err := c.Check(ctx, ref); err != nil {
		logrus.Warnf("Could not check %s: %s", ref.Name, err)
	}

	return nil
}

func (c *crlChecker) Remove(ctx context.Context, name string) error {
	if err := c.db.WithContext(ctx).Delete(&persistence.WatchedCRL{}, "name = ?", name).Error; err != nil {
		logrus.Errorf("Could not delete watch entry: %s", err)

		return fmt.Errorf("could not delete watch entry")
	}

	return nil
}

func (c *crlChecker) List(ctx context.Context) ([]persistence.WatchedCRL, error) {
	var watched []persistence.WatchedCRL

	err := c.db.WithContext(ctx).Find(&watched).Error

	return watched, err
}

// Run re-checks every watched CRL sequentially and records the outcome on
// its row.
func (c *crlChecker) Run(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logrus.Infof("Initiate monitoring run...")
	defer logrus.Infof("Monitoring run finished")

	var watched []persistence.WatchedCRL
	if err := c.db.WithContext(ctx).Find(&watched).Error; err != nil {
		return err
	}

	var errs []error

	for _, w := range watched {
		ref := crl.Reference{Server: w.Server, Path: crl.PathType(w.Path), Name: w.Name}

		logrus.Infof("Checking %s...", ref.URL())

		res, err := c.check(ctx, ref)
		if err != nil {
			errs = append(errs, err)
		}

		w.Status = int(res.status)
		w.Message = res.message
		w.ExpiresAt = res.info.Expiration
		w.LastChecked = time.Now()

		if err := c.db.WithContext(ctx).Save(&w).Error; err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
