// Package session tracks signed-in administrators.
//
// The Registry is owned by whoever builds it (the app at startup) and
// replaces a user's session on every sign-in. Observers acquire a
// Subscription and must release it with Close when they go away.
package session

import (
	"sync"
	"time"
)

// EventKind identifies an auth transition.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Session is one authenticated administrator session.
type Session struct {
	ID        string
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Event is delivered to subscribers after every transition.
type Event struct {
	Kind    EventKind
	Session Session
}

// Registry holds the active session of every signed-in user.
type Registry struct {
	mu      sync.RWMutex
	byUser  map[string]Session
	subs    map[uint64]func(Event)
	nextSub uint64
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Session),
		subs:   make(map[uint64]func(Event)),
		now:    time.Now,
	}
}

// Open records s as the user's current session, replacing any previous
// one, and notifies subscribers.
func (r *Registry) Open(s Session) {
	r.mu.Lock()
	prev, hadPrev := r.byUser[s.UserID]
	r.byUser[s.UserID] = s
	subs := r.snapshotSubs()
	r.mu.Unlock()

	if hadPrev {
		notify(subs, Event{Kind: SignedOut, Session: prev})
	}
	notify(subs, Event{Kind: SignedIn, Session: s})
}

// Close ends the user's session. It reports whether one was active.
func (r *Registry) Close(userID string) bool {
	r.mu.Lock()
	s, ok := r.byUser[userID]
	delete(r.byUser, userID)
	subs := r.snapshotSubs()
	r.mu.Unlock()

	if ok {
		notify(subs, Event{Kind: SignedOut, Session: s})
	}
	return ok
}

// Lookup returns the active session with the given ID for userID.
// Expired sessions are treated as absent.
func (r *Registry) Lookup(userID, sessionID string) (Session, bool) {
	r.mu.RLock()
	s, ok := r.byUser[userID]
	r.mu.RUnlock()

	if !ok || s.ID != sessionID || s.Expired(r.now()) {
		return Session{}, false
	}
	return s, true
}

// Active returns the number of open sessions.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Subscribe registers fn for every future event. fn runs synchronously on
// the goroutine that caused the transition and must not call back into
// the registry's Subscribe.
func (r *Registry) Subscribe(fn func(Event)) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSub++
	id := r.nextSub
	r.subs[id] = fn
	return &Subscription{registry: r, id: id}
}

func (r *Registry) unsubscribe(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
}

// snapshotSubs must be called with r.mu held.
func (r *Registry) snapshotSubs() []func(Event) {
	out := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), e Event) {
	for _, fn := range subs {
		fn(e)
	}
}

// Subscription is a registered observer. Close is idempotent.
type Subscription struct {
	registry *Registry
	id       uint64
	once     sync.Once
}

// Close stops delivery of further events.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.registry.unsubscribe(s.id)
	})
}
