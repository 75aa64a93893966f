package ui

import (
	"campusevents/internal/eventbus"
	"campusevents/internal/logic"
	"campusevents/internal/search"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// FeedMsg carries a store snapshot into the program
type FeedMsg struct {
	Snapshot logic.Snapshot
}

// ViewMsg carries a recomputed search view into the program
type ViewMsg struct {
	View search.View
}

// refreshDoneMsg is returned when a fetch cycle started by the UI ends
type refreshDoneMsg struct {
	reset bool
	err   error
}

// openedMsg is the result of launching an event link
type openedMsg struct {
	url string
	err error
}

// pagerMsg is the result of a help or details pager session
type pagerMsg struct {
	what string
	err  error
}

// clearStatusMsg clears the status line
type clearStatusMsg struct{}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
