// Package testutil provides test utilities and helpers.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Request is a query received by the fake open-data API.
type Request struct {
	Endpoint string
	Where    string
	Order    string
	Limit    string
	AppToken string
}

type response struct {
	status int
	body   string
}

// FakeAPI is an in-process stand-in for the SODA resource API.
// Endpoints without a configured response return an empty JSON array.
type FakeAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]response
	requests  []Request
}

// NewFakeAPI starts a fake open-data API that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{responses: make(map[string]response)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake API.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// SetRecords makes endpoint answer with the given rows.
func (f *FakeAPI) SetRecords(endpoint string, records []map[string]any) {
	body, err := json.Marshal(records)
	if err != nil {
		panic(err)
	}
	f.SetResponse(endpoint, http.StatusOK, string(body))
}

// SetResponse makes endpoint answer with a raw status and body.
func (f *FakeAPI) SetResponse(endpoint string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[endpoint] = response{status: status, body: body}
}

// Requests returns the queries received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent query, or nil if none was received.
func (f *FakeAPI) LastRequest() *Request {
	reqs := f.Requests()
	if len(reqs) == 0 {
		return nil
	}
	return &reqs[len(reqs)-1]
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/resource/"), ".json")
	q := r.URL.Query()

	f.mu.Lock()
	f.requests = append(f.requests, Request{
		Endpoint: endpoint,
		Where:    q.Get("$where"),
		Order:    q.Get("$order"),
		Limit:    q.Get("$limit"),
		AppToken: r.Header.Get("X-App-Token"),
	})
	resp, ok := f.responses[endpoint]
	f.mu.Unlock()

	if !ok {
		resp = response{status: http.StatusOK, body: "[]"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
