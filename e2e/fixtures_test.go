//go:build e2e && unix

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

type fakeEvent struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	StartsOn     string         `json:"startsOn"`
	EndsOn       string         `json:"endsOn"`
	Location     *fakeNamed     `json:"location,omitempty"`
	Organization *fakeNamed     `json:"organization,omitempty"`
	Categories   []fakeCategory `json:"categories,omitempty"`
}

type fakeNamed struct {
	Name string `json:"name"`
}

type fakeCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// fakeEngage serves the event search endpoint with offset paging
type fakeEngage struct {
	mu       sync.Mutex
	events   []fakeEvent
	failing  bool
	requests int
}

func (f *fakeEngage) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *fakeEngage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if r.URL.Path != "/engage/api/discovery/event/search" {
		http.NotFound(w, r)
		return
	}
	if f.failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	take, _ := strconv.Atoi(r.URL.Query().Get("take"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	end := skip + take
	if skip > len(f.events) {
		skip = len(f.events)
	}
	if end > len(f.events) {
		end = len(f.events)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"value": f.events[skip:end]})
}

// campusEvents is five events: two full pages of three would need six, so the
// second page is short and ends the cycle
func campusEvents() []fakeEvent {
	return []fakeEvent{
		{ID: 1, Name: "Wolfie 5K", StartsOn: "2026-10-20T14:00:00Z", EndsOn: "2026-10-20T16:00:00Z",
			Location: &fakeNamed{Name: "LaValle Stadium"}, Organization: &fakeNamed{Name: "Athletics"},
			Categories: []fakeCategory{{ID: 1, Name: "Sports"}}},
		{ID: 2, Name: "Career Fair", StartsOn: "2026-10-21T15:00:00Z", EndsOn: "2026-10-21T19:00:00Z",
			Location: &fakeNamed{Name: "SAC Ballroom A"}, Organization: &fakeNamed{Name: "Career Center"},
			Categories: []fakeCategory{{ID: 2, Name: "Professional"}}},
		{ID: 3, Name: "Jazz Night", StartsOn: "2026-10-22T23:00:00Z", EndsOn: "2026-10-23T01:00:00Z",
			Location: &fakeNamed{Name: "Staller Center"}},
		{ID: 4, Name: "Hackathon Kickoff", StartsOn: "2026-10-24T13:00:00Z", EndsOn: "2026-10-24T15:00:00Z",
			Organization: &fakeNamed{Name: "ACM"}},
		{ID: 5, Name: "Open Mic", StartsOn: "2026-10-25T20:00:00Z", EndsOn: "2026-10-25T22:00:00Z"},
	}
}

func startFakeEngage(t *testing.T, events []fakeEvent) (*fakeEngage, string) {
	t.Helper()
	f := &fakeEngage{events: events}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}
