package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegistry_OpenReplacesAndNotifies(t *testing.T) {
	r := NewRegistry()
	var events []Event
	sub := r.Subscribe(func(e Event) { events = append(events, e) })
	defer sub.Close()

	first := Session{ID: "s1", UserID: "u1", Username: "admin"}
	second := Session{ID: "s2", UserID: "u1", Username: "admin"}
	r.Open(first)
	r.Open(second)

	_, ok := r.Lookup("u1", "s1")
	assert.False(t, ok, "replaced session is no longer valid")
	got, ok := r.Lookup("u1", "s2")
	assert.True(t, ok)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, 1, r.Active())

	kinds := make([]EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{SignedIn, SignedOut, SignedIn}, kinds)
	assert.Equal(t, "s1", events[1].Session.ID)
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	r.Open(Session{ID: "s1", UserID: "u1"})

	assert.True(t, r.Close("u1"))
	assert.False(t, r.Close("u1"))
	_, ok := r.Lookup("u1", "s1")
	assert.False(t, ok)
}

func TestRegistry_ExpiredSessionsAreAbsent(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.now = func() time.Time { return now }

	r.Open(Session{ID: "s1", UserID: "u1", ExpiresAt: now.Add(time.Minute)})
	_, ok := r.Lookup("u1", "s1")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = r.Lookup("u1", "s1")
	assert.False(t, ok)
}

func TestSubscription_CloseStopsDeliveryAndIsIdempotent(t *testing.T) {
	r := NewRegistry()
	calls := 0
	sub := r.Subscribe(func(Event) { calls++ })

	r.Open(Session{ID: "s1", UserID: "u1"})
	sub.Close()
	sub.Close()
	r.Close("u1")

	assert.Equal(t, 1, calls)
}
