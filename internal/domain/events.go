package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventFetchStarted   EventType = "FetchStarted"
	EventFetchCompleted EventType = "FetchCompleted"
	EventFetchFailed    EventType = "FetchFailed"
	EventFetchDiscarded EventType = "FetchDiscarded"
	EventQueryChanged   EventType = "QueryChanged"
	EventFilterApplied  EventType = "FilterApplied"
	EventError          EventType = "Error"
	EventConfigLoaded   EventType = "ConfigLoaded"
	EventConfigSaved    EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// FetchStartedEvent is emitted when a fetch cycle begins
type FetchStartedEvent struct {
	Epoch uint64
	Cycle string
	Reset bool
}

func (e FetchStartedEvent) Type() EventType { return EventFetchStarted }

// FetchCompletedEvent is emitted when a fetch cycle's result is published
type FetchCompletedEvent struct {
	Epoch uint64
	Cycle string
	Count int
}

func (e FetchCompletedEvent) Type() EventType { return EventFetchCompleted }

// FetchFailedEvent is emitted when a fetch cycle aborts
type FetchFailedEvent struct {
	Epoch uint64
	Cycle string
	Reset bool
	Err   error
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// FetchDiscardedEvent is emitted when a superseded cycle finishes and its result is dropped
type FetchDiscardedEvent struct {
	Epoch   uint64
	Current uint64
	Cycle   string
}

func (e FetchDiscardedEvent) Type() EventType { return EventFetchDiscarded }

// QueryChangedEvent is emitted when the search query is edited
type QueryChangedEvent struct {
	Query string
}

func (e QueryChangedEvent) Type() EventType { return EventQueryChanged }

// FilterAppliedEvent is emitted after the filtered view is recomputed
type FilterAppliedEvent struct {
	Query   string
	Matches int
	Total   int
}

func (e FilterAppliedEvent) Type() EventType { return EventFilterApplied }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
