package sessions

import (
	"sync"
	"time"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/rs/zerolog/log"
)

// State is the authentication state of the client
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// EventKind describes the transition a store event reports
type EventKind int

const (
	SignedIn  EventKind = iota + 1 // Unauthenticated -> Authenticated, or a different principal took over
	Refreshed                      // Authenticated -> Authenticated for the same principal
	SignedOut                      // Authenticated -> Unauthenticated
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case Refreshed:
		return "refreshed"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Event is delivered to listeners after every session change.
type Event struct {
	Kind     EventKind
	Previous *Session // nil when there was no session
	Current  *Session // nil after sign-out
}

type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// Store holds the single current session. It is safe for concurrent use and is
// passed explicitly to everything that reads or changes the session.
type Store struct {
	lock      sync.RWMutex
	session   *Session
	resolved  bool
	listeners []listenerEntry
	nextID    int
	repo      Repo
	now       func() time.Time

	// writeLock orders each change with its repo write, so the repo always
	// ends up holding the last change made in memory.
	writeLock sync.Mutex

	// Events wait in pending until one goroutine delivers them, in change order
	pending    []Event
	delivering bool
}

type StoreOption func(*Store)

// WithRepo writes every change through to repo
func WithRepo(repo Repo) StoreOption {
	return func(s *Store) {
		s.repo = repo
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = nowFunc
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads a previously persisted session from the repo. A restored
// session marks the store resolved; an empty repo leaves the store untouched.
func (s *Store) Restore() error {
	if s.repo == nil {
		return nil
	}
	s.writeLock.Lock()
	saved, err := s.repo.Load()
	if errors.Is(err, errors.ErrNoSession) {
		s.writeLock.Unlock()
		return nil
	}
	if err != nil {
		s.writeLock.Unlock()
		return errors.Wrapf(err, "restore session")
	}

	s.lock.Lock()
	prev := s.session
	next := saved.clone()
	s.session = &next
	s.resolved = true
	s.pending = append(s.pending, eventFor(prev, &next))
	s.lock.Unlock()
	s.writeLock.Unlock()

	s.deliver()
	return nil
}

// Current returns a copy of the current session
func (s *Store) Current() (Session, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.session == nil {
		return Session{}, false
	}
	return s.session.clone(), true
}

// Token returns the current bearer token, or "" without a session
func (s *Store) Token() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.session == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Resolved reports whether the identity provider has reported its first state.
// Until then the client is loading and route guards must wait.
func (s *Store) Resolved() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.resolved
}

func (s *Store) MarkResolved() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.resolved = true
}

// Set replaces the session. The same principal produces a Refreshed event,
// anything else a SignedIn event.
func (s *Store) Set(session Session) {
	next := session.clone()
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = s.now()
	}

	s.writeLock.Lock()
	s.lock.Lock()
	prev := s.session
	s.session = &next
	s.pending = append(s.pending, eventFor(prev, &next))
	s.lock.Unlock()
	s.persist(&next)
	s.writeLock.Unlock()

	s.deliver()
}

// Update mutates the current session in place. It does nothing without a session.
func (s *Store) Update(fn func(*Session)) bool {
	s.writeLock.Lock()
	s.lock.Lock()
	if s.session == nil {
		s.lock.Unlock()
		s.writeLock.Unlock()
		return false
	}
	prev := s.session.clone()
	next := s.session.clone()
	fn(&next)
	next.UpdatedAt = s.now()
	s.session = &next
	s.pending = append(s.pending, eventFor(&prev, &next))
	s.lock.Unlock()
	s.persist(&next)
	s.writeLock.Unlock()

	s.deliver()
	return true
}

// Clear drops the session. Clearing an empty store is a no-op and emits nothing.
func (s *Store) Clear() {
	s.writeLock.Lock()
	s.lock.Lock()
	prev := s.session
	s.session = nil
	if prev != nil {
		s.pending = append(s.pending, Event{Kind: SignedOut, Previous: prev})
	}
	s.lock.Unlock()

	if prev == nil {
		s.writeLock.Unlock()
		return
	}
	if s.repo != nil {
		if err := s.repo.Delete(); err != nil {
			log.Err(err).Msg("failed to delete persisted session")
		}
	}
	s.writeLock.Unlock()

	s.deliver()
}

// Subscribe registers fn for session events and returns a function that
// removes it. The returned function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) func() {
	s.lock.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.lock.Unlock()

	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) persist(session *Session) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(session); err != nil {
		log.Err(err).Str("principal", session.Principal.ID).Msg("failed to persist session")
	}
}

// deliver runs listeners for pending events outside the locks so they may
// read or change the store. One goroutine delivers at a time; events raised
// meanwhile, from listeners or other goroutines, are delivered by it in the
// order the changes were made.
func (s *Store) deliver() {
	for {
		s.lock.Lock()
		if s.delivering || len(s.pending) == 0 {
			s.lock.Unlock()
			return
		}
		s.delivering = true
		ev := s.pending[0]
		s.pending = s.pending[1:]
		listeners := make([]Listener, len(s.listeners))
		for i, l := range s.listeners {
			listeners[i] = l.fn
		}
		s.lock.Unlock()

		for _, fn := range listeners {
			fn(ev)
		}

		s.lock.Lock()
		s.delivering = false
		s.lock.Unlock()
	}
}

func eventFor(prev, next *Session) Event {
	kind := SignedIn
	if prev != nil && prev.Principal.ID == next.Principal.ID {
		kind = Refreshed
	}
	ev := Event{Kind: kind, Current: next}
	if prev != nil {
		p := prev.clone()
		ev.Previous = &p
	}
	c := next.clone()
	ev.Current = &c
	return ev
}
