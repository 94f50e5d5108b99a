// Package connectivity answers one question on demand: is the network
// reachable right now. Decisions are made once per user action, so a
// fresh synchronous probe per call is the whole contract; there is no
// polling or event stream.
package connectivity

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	defaultProbeURL = "http://clients3.google.com/generate_204"
	defaultTimeout  = 3 * time.Second
)

type Oracle interface {
	Online(ctx context.Context) bool
}

// Probe reports online when a single HEAD request to a well-known URL
// completes, whatever the status code says: reachability, not health.
type Probe struct {
	url  string
	http *http.Client
}

func NewProbe(url string, httpClient *http.Client) *Probe {
	if url == "" {
		url = defaultProbeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Probe{url: url, http: httpClient}
}

func (p *Probe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return true
}

// Static is a fixed answer, for tests and for forcing offline reads.
type Static bool

func (s Static) Online(context.Context) bool { return bool(s) }
