package state

import (
	"campusevents/internal/domain"
	"campusevents/internal/logic"
	"campusevents/internal/search"
)

// Screen is the top-level thing the body shows
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenFailed
	ScreenEmpty
	ScreenList
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenFailed:
		return "failed"
	case ScreenEmpty:
		return "empty"
	case ScreenList:
		return "list"
	default:
		return "unknown"
	}
}

// AppState contains all the application state
type AppState struct {
	// Data
	Feed logic.Snapshot // latest store snapshot
	View search.View    // latest filtered view

	// Selection state
	Cursor int // index into View.Events

	// UI state
	Searching     bool // search input has focus
	ShowHelp      bool // full key help below the list
	InPager       bool // ov owns the terminal
	StatusMessage string
	StatusIsError bool
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{
		Feed: logic.Snapshot{Events: []domain.Event{}},
		View: search.View{Events: []domain.Event{}},
	}
}

// Screen decides between loading, failure, empty and list rendering.
// Held events stay on screen during a refresh and after a failed load-more.
func (s *AppState) Screen() Screen {
	if len(s.View.Events) > 0 {
		return ScreenList
	}
	switch s.Feed.State {
	case domain.StateIdle, domain.StateLoading:
		return ScreenLoading
	case domain.StateFailed:
		if len(s.Feed.Events) == 0 {
			return ScreenFailed
		}
	case domain.StateRefreshing:
		if len(s.Feed.Events) == 0 {
			return ScreenLoading
		}
	}
	return ScreenEmpty
}

// InFlight reports whether a fetch cycle is running
func (s *AppState) InFlight() bool {
	return s.Feed.State.InFlight()
}

// Selected returns the event under the cursor
func (s *AppState) Selected() (domain.Event, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.View.Events) {
		return domain.Event{}, false
	}
	return s.View.Events[s.Cursor], true
}

// MoveCursor moves the cursor by delta, clamped to the view
func (s *AppState) MoveCursor(delta int) {
	s.Cursor += delta
	s.ClampCursor()
}

// SetCursor moves the cursor to i, clamped to the view
func (s *AppState) SetCursor(i int) {
	s.Cursor = i
	s.ClampCursor()
}

// ClampCursor keeps the cursor inside the view
func (s *AppState) ClampCursor() {
	if s.Cursor >= len(s.View.Events) {
		s.Cursor = len(s.View.Events) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// SetStatus shows a message in the status line
func (s *AppState) SetStatus(msg string, isError bool) {
	s.StatusMessage = msg
	s.StatusIsError = isError
}

// ClearStatus removes the status line message
func (s *AppState) ClearStatus() {
	s.StatusMessage = ""
	s.StatusIsError = false
}
