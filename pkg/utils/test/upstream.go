// Package testutils holds helpers shared by chatproxy tests.
package testutils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// RecordedRequest is a request captured by Upstream.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Upstream is a fake AI service that records every request it receives.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewUpstream starts a fake that answers every request with status and a
// JSON body.
func NewUpstream(status int, body string) *Upstream {
	return NewUpstreamFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// NewUpstreamFunc starts a fake that delegates responses to fn.
func NewUpstreamFunc(fn http.HandlerFunc) *Upstream {
	u := &Upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.requests = append(u.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		u.mu.Unlock()
		fn(w, r)
	}))
	return u
}

// Requests returns a copy of every request received so far.
func (u *Upstream) Requests() []RecordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]RecordedRequest(nil), u.requests...)
}

// LastRequest returns the most recent request, or the zero value if none.
func (u *Upstream) LastRequest() RecordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.requests) == 0 {
		return RecordedRequest{}
	}
	return u.requests[len(u.requests)-1]
}
