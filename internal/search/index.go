package search

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"campusevents/internal/domain"
	"campusevents/internal/eventbus"
)

// DefaultDebounce is the quiet period after the last query edit before filtering
const DefaultDebounce = 200 * time.Millisecond

// Index keeps the full event collection and a filtered view of it.
//
// Query edits are debounced: each SetQuery restarts the timer and only the
// last query within the window is applied. Collection changes apply
// immediately with the latest query.
type Index struct {
	mu       sync.Mutex
	debounce time.Duration
	bus      eventbus.EventBus
	logger   *zap.Logger

	events  []domain.Event
	query   string // latest requested query, may not be applied yet
	view    View
	timer   *time.Timer
	pending uint64 // generation of the scheduled recompute
	gen     uint64
	closed  bool

	subs    map[uint64]func(View)
	nextSub uint64

	notifyMu sync.Mutex
}

// NewIndex creates an empty index; bus and logger may be nil
func NewIndex(debounce time.Duration, bus eventbus.EventBus, logger *zap.Logger) *Index {
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		debounce: debounce,
		bus:      bus,
		logger:   logger.Named("search"),
		events:   []domain.Event{},
		view:     View{Events: []domain.Event{}},
		subs:     make(map[uint64]func(View)),
	}
}

// View returns the last published view
func (x *Index) View() View {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.view
}

// Query returns the latest requested query
func (x *Index) Query() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.query
}

// Pending reports whether a debounced recompute is scheduled
func (x *Index) Pending() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.timer != nil
}

// Subscribe registers fn to receive every recomputed view.
// Returns an unsubscribe function.
func (x *Index) Subscribe(fn func(View)) func() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.nextSub++
	id := x.nextSub
	x.subs[id] = fn
	return func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		delete(x.subs, id)
	}
}

// SetEvents replaces the collection and recomputes right away
func (x *Index) SetEvents(events []domain.Event) {
	if events == nil {
		events = []domain.Event{}
	}
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	x.events = events
	x.stopTimerLocked()
	x.recomputeLocked()
	x.mu.Unlock()

	x.notify()
}

// SetQuery records a new query and schedules a recompute after the debounce
// window, cancelling any recompute still pending.
func (x *Index) SetQuery(query string) {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	if query == x.query {
		x.mu.Unlock()
		return
	}
	x.query = query
	x.stopTimerLocked()

	if x.debounce == 0 {
		x.recomputeLocked()
		x.mu.Unlock()
		x.publishQuery(query)
		x.notify()
		return
	}

	x.gen++
	gen := x.gen
	x.pending = gen
	x.timer = time.AfterFunc(x.debounce, func() { x.fire(gen) })
	x.mu.Unlock()

	x.publishQuery(query)
}

// Flush applies a pending query immediately
func (x *Index) Flush() {
	x.mu.Lock()
	if x.closed || x.timer == nil {
		x.mu.Unlock()
		return
	}
	x.stopTimerLocked()
	x.recomputeLocked()
	x.mu.Unlock()

	x.notify()
}

// Close stops any pending recompute; later calls are ignored
func (x *Index) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	x.stopTimerLocked()
}

func (x *Index) fire(gen uint64) {
	x.mu.Lock()
	if x.closed || x.timer == nil || x.pending != gen {
		x.mu.Unlock()
		return
	}
	x.timer = nil
	x.recomputeLocked()
	x.mu.Unlock()

	x.notify()
}

func (x *Index) stopTimerLocked() {
	if x.timer != nil {
		x.timer.Stop()
		x.timer = nil
	}
	x.pending = 0
}

func (x *Index) recomputeLocked() {
	x.view = View{
		Events:       Filter(x.events, x.query),
		Query:        x.query,
		Total:        len(x.events),
		Computations: x.view.Computations + 1,
	}
	x.logger.Debug("filter applied",
		zap.String("query", x.query),
		zap.Int("matches", len(x.view.Events)),
		zap.Int("total", x.view.Total))
}

func (x *Index) publishQuery(query string) {
	if x.bus != nil {
		x.bus.Publish(eventbus.QueryChangedEvent{Query: query})
	}
}

func (x *Index) notify() {
	x.notifyMu.Lock()
	x.mu.Lock()
	view := x.view
	subs := make([]func(View), 0, len(x.subs))
	for _, fn := range x.subs {
		subs = append(subs, fn)
	}
	x.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
	x.notifyMu.Unlock()

	if x.bus != nil {
		x.bus.Publish(eventbus.FilterAppliedEvent{
			Query:   view.Query,
			Matches: len(view.Events),
			Total:   view.Total,
		})
	}
}
