// Package crl fetches a Certificate Revocation List from its distribution
// point and classifies its temporal validity.
package crl

import (
	"context"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PathType is the CDP virtual directory the CRL is published under.
type PathType string

const (
	PathCertEnroll PathType = "CertEnroll"
	PathCertData   PathType = "CertData"
)

// Reference identifies one CRL to monitor.
type Reference struct {
	Server string
	Path   PathType
	Name   string
}

// URL builds the full retrieval locator.
func (r Reference) URL() string {
	return fmt.Sprintf("https://%s/%s/%s", r.Server, r.Path, r.Name)
}

// oidNextPublish is the Microsoft "CRL Next Publish" extension.
var oidNextPublish = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 21, 4}

// overlapFallback applies when a CRL carries no Next Publish extension.
const overlapFallback = 3 * 24 * time.Hour

// Info holds the temporal facts extracted from a decoded CRL.
type Info struct {
	Creation   time.Time
	Overlap    time.Time
	Expiration time.Time
}

// Fetch downloads the CRL bytes. Callers treat any returned error or a
// non-200 status as the unreachable outcome; the client must carry a
// timeout so a dead CDP server cannot hang the run.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

// Parse decodes a DER CRL into its temporal facts. The overlap date prefers
// the Next Publish extension and falls back to three days before expiration
// when the extension is absent.
func Parse(der []byte) (Info, error) {
	list, err := x509.ParseRevocationList(der)
	if err != nil {
		return Info{}, fmt.Errorf("could not parse CRL: %w", err)
	}

	info := Info{
		Creation:   list.ThisUpdate,
		Expiration: list.NextUpdate,
	}

	info.Overlap = info.Expiration.Add(-overlapFallback)

	for _, ext := range list.Extensions {
		if !ext.Id.Equal(oidNextPublish) {
			continue
		}

		var nextPublish time.Time
		if _, err := asn1.Unmarshal(ext.Value, &nextPublish); err != nil {
			return Info{}, fmt.Errorf("could not parse Next Publish extension: %w", err)
		}

		info.Overlap = nextPublish
		break
	}

	return info, nil
}

// UnixSeconds converts a timestamp to epoch seconds, truncated. The zero
// time maps to 0, the sentinel reported when no CRL could be examined.
func UnixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.Unix()
}
