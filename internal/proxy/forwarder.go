// Package proxy forwards non-crawler traffic to the configured origin.
package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Forwarder reissues inbound requests against the origin server. The inbound
// method, path, query, headers, and body are relayed verbatim; nothing is
// filtered or rewritten. Each inbound request gets exactly one origin
// attempt, bounded by the configured timeout.
type Forwarder struct {
	origin *url.URL
	client *http.Client
}

// New creates a Forwarder targeting originURL. A trailing slash on the base
// URL is dropped so joining with the inbound path never doubles a separator.
func New(originURL string, timeout time.Duration) (*Forwarder, error) {
	u, err := url.Parse(strings.TrimSuffix(originURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin url %q is not absolute", originURL)
	}
	return &Forwarder{
		origin: u,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
			// Redirects are the origin's business; relay them untouched.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Forward issues the origin request and returns its response unread. The
// caller owns the response body. Any transport failure (timeout, refused
// connection, malformed response) comes back as an error; no retry is made.
func (f *Forwarder) Forward(r *http.Request) (*http.Response, error) {
	target := f.origin.String() + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		return nil, fmt.Errorf("build origin request: %w", err)
	}
	out.Header = r.Header.Clone()
	if r.ContentLength > 0 {
		out.ContentLength = r.ContentLength
	}

	resp, err := f.client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("fetch from origin: %w", err)
	}
	return resp, nil
}
