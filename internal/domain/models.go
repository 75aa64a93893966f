package domain

import (
	"time"
)

// MaxDisplayCategories is how many category chips a card shows
const MaxDisplayCategories = 3

// Event represents a campus event as returned by the events search endpoint
type Event struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	StartsOn     string        `json:"startsOn"`
	EndsOn       string        `json:"endsOn"`
	ImagePath    string        `json:"imagePath,omitempty"` // relative; full URL derived by engage.ImageURL
	Location     *Location     `json:"location,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Categories   []Category    `json:"categories,omitempty"` // server order
}

// Location describes where an event happens
type Location struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	IsVirtual   bool   `json:"isVirtual,omitempty"`
	VirtualLink string `json:"virtualLink,omitempty"`
}

// Organization is the host of an event
type Organization struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Category tags an event
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DisplayName returns the event name or a placeholder when the server sent none
func (e Event) DisplayName() string {
	if e.Name == "" {
		return "Event Name Unavailable"
	}
	return e.Name
}

// LocationLabel returns the line shown next to the location marker
func (e Event) LocationLabel() string {
	if e.Location == nil {
		return "Location TBD"
	}
	if e.Location.IsVirtual {
		return "Virtual Event"
	}
	if e.Location.Name == "" {
		return "Location TBD"
	}
	return e.Location.Name
}

// OrganizationName returns the host name ("" if absent)
func (e Event) OrganizationName() string {
	if e.Organization == nil {
		return ""
	}
	return e.Organization.Name
}

// TopCategories returns at most n categories in server order
func (e Event) TopCategories(n int) []Category {
	if n < 0 || len(e.Categories) <= n {
		return e.Categories
	}
	return e.Categories[:n]
}

// Start parses StartsOn
func (e Event) Start() (time.Time, error) {
	return parseTimestamp(e.StartsOn)
}

// End parses EndsOn
func (e Event) End() (time.Time, error) {
	return parseTimestamp(e.EndsOn)
}

// FormatWhen renders the start/end range in loc. Same-day events only repeat
// the time for the end; unparseable timestamps yield "Date unavailable".
func (e Event) FormatWhen(loc *time.Location) string {
	start, err := e.Start()
	if err != nil {
		return "Date unavailable"
	}
	end, err := e.End()
	if err != nil {
		return "Date unavailable"
	}
	if loc == nil {
		loc = time.Local
	}
	start = start.In(loc)
	end = end.In(loc)

	const full = "Mon, Jan 2, 3:04 PM"
	startStr := start.Format(full)
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return startStr + " - " + end.Format("3:04 PM")
	}
	return startStr + " - " + end.Format(full)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	// some records omit the zone offset
	return time.Parse("2006-01-02T15:04:05", s)
}

// LoadState describes where the events feed is in its fetch lifecycle
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateRefreshing
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRefreshing:
		return "refreshing"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a fetch cycle is running
func (s LoadState) InFlight() bool {
	return s == StateLoading || s == StateRefreshing
}
