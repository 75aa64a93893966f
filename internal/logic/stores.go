package logic

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campusevents/internal/domain"
	"campusevents/internal/eventbus"
)

// FeedStore owns the fetched event collection and its load state.
//
// Every Refresh starts a new fetch epoch and cancels the previous in-flight
// cycle. A cycle only writes its result if its epoch is still current, so a
// slow superseded response can never overwrite a newer one. The collection
// slice is replaced wholesale and never mutated in place, which lets
// snapshots share it.
type FeedStore struct {
	mu     sync.Mutex
	source EventSource
	bus    eventbus.EventBus
	logger *zap.Logger

	events []domain.Event
	state  domain.LoadState
	err    error
	epoch  uint64
	cancel context.CancelFunc

	subs    map[uint64]func(Snapshot)
	nextSub uint64

	// serializes subscriber delivery so snapshots arrive in the order they were taken
	notifyMu sync.Mutex
}

// NewFeedStore creates an empty store; bus and logger may be nil
func NewFeedStore(source EventSource, bus eventbus.EventBus, logger *zap.Logger) *FeedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedStore{
		source: source,
		bus:    bus,
		logger: logger.Named("feed"),
		events: []domain.Event{},
		subs:   make(map[uint64]func(Snapshot)),
	}
}

// Snapshot returns the current state
func (s *FeedStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *FeedStore) snapshotLocked() Snapshot {
	snap := Snapshot{
		Events: s.events,
		State:  s.state,
		Err:    s.err,
		Epoch:  s.epoch,
	}
	if s.state == domain.StateFailed {
		snap.Message = FailureMessage
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every state change.
// Returns an unsubscribe function.
func (s *FeedStore) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Refresh runs one fetch cycle and blocks until it finishes.
//
// With reset the collection is refetched from offset 0 and a failure leaves it
// empty; without reset paging continues after the events already held and a
// failure keeps them. Returns ErrSuperseded when a newer Refresh started
// before this one finished.
func (s *FeedStore) Refresh(ctx context.Context, reset bool) error {
	cycle := uuid.NewString()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.epoch++
	epoch := s.epoch
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	existing := s.events
	if s.state == domain.StateLoaded || len(s.events) > 0 {
		s.state = domain.StateRefreshing
	} else {
		s.state = domain.StateLoading
	}
	s.err = nil
	s.mu.Unlock()
	defer cancel()

	log := s.logger.With(zap.String("cycle", cycle), zap.Uint64("epoch", epoch), zap.Bool("reset", reset))
	log.Info("fetch cycle started", zap.Int("held", len(existing)))
	s.publish(eventbus.FetchStartedEvent{Epoch: epoch, Cycle: cycle, Reset: reset})

	events, err := s.source.FetchAll(cctx, existing, reset)

	s.mu.Lock()
	if epoch != s.epoch {
		current := s.epoch
		s.mu.Unlock()
		log.Info("discarding superseded fetch result", zap.Uint64("current", current), zap.Error(err))
		if s.bus != nil {
			s.bus.Publish(eventbus.FetchDiscardedEvent{Epoch: epoch, Current: current, Cycle: cycle})
		}
		return ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		s.state = domain.StateFailed
		s.err = err
		if reset {
			s.events = []domain.Event{}
		}
	} else {
		s.state = domain.StateLoaded
		s.events = events
	}
	count := len(s.events)
	s.mu.Unlock()

	if err != nil {
		log.Warn("fetch cycle failed", zap.Error(err), zap.Int("kept", count))
		s.publish(eventbus.FetchFailedEvent{Epoch: epoch, Cycle: cycle, Reset: reset, Err: err})
		return err
	}
	log.Info("fetch cycle completed", zap.Int("events", count))
	s.publish(eventbus.FetchCompletedEvent{Epoch: epoch, Cycle: cycle, Count: count})
	return nil
}

// Cancel aborts the in-flight cycle, if any. The cancelled cycle still
// records its failure unless a newer one has started.
func (s *FeedStore) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// publish notifies subscribers with a fresh snapshot and forwards the domain event
func (s *FeedStore) publish(event eventbus.DomainEvent) {
	s.notifyMu.Lock()
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	s.notifyMu.Unlock()

	if s.bus != nil {
		s.bus.Publish(event)
	}
}
