package cart

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// DefaultLimit is the number of carts a Store built by NewStore holds.
const DefaultLimit = 10000

// Store keeps shopper carts in memory, keyed by an opaque cart ID. Once
// limit carts are stored, storing another evicts the least recently used.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
	used  map[string]uint64
	clock uint64
	limit int
}

// NewStore creates an empty Store holding at most DefaultLimit carts.
func NewStore() *Store {
	return NewStoreWithLimit(DefaultLimit)
}

// NewStoreWithLimit creates an empty Store holding at most limit carts.
// A limit below one means no limit.
func NewStoreWithLimit(limit int) *Store {
	return &Store{
		carts: make(map[string]*Cart),
		used:  make(map[string]uint64),
		limit: limit,
	}
}

// Len returns the number of stored carts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// touch marks id as just used. Callers hold s.mu.
func (s *Store) touch(id string) {
	s.clock++
	s.used[id] = s.clock
}

// put stores c under id, evicting the least recently used cart when the
// store is full. Callers hold s.mu.
func (s *Store) put(id string, c *Cart) {
	if _, ok := s.carts[id]; !ok && s.limit > 0 && len(s.carts) >= s.limit {
		var (
			oldest   string
			oldestAt uint64
		)
		for other, at := range s.used {
			if oldest == "" || at < oldestAt {
				oldest, oldestAt = other, at
			}
		}
		s.remove(oldest)
	}
	s.carts[id] = c
	s.touch(id)
}

// remove forgets id. Callers hold s.mu.
func (s *Store) remove(id string) {
	delete(s.carts, id)
	delete(s.used, id)
}

// NewID returns a fresh cart ID.
func (s *Store) NewID() string {
	return uuid.New().String()
}

// Update runs fn against the cart for id, creating it if needed.
// The store lock is held for the duration of fn.
func (s *Store) Update(id string, fn func(c *Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		c = New()
		s.put(id, c)
	} else {
		s.touch(id)
	}
	return fn(c)
}

// View runs fn against the cart for id. Unknown IDs see an empty cart
// that is not stored.
func (s *Store) View(id string, fn func(c *Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		c = New()
	} else {
		s.touch(id)
	}
	fn(c)
}

// Discard forgets the cart for id.
func (s *Store) Discard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Take removes the cart for id and returns it. Unknown IDs yield an
// empty cart.
func (s *Store) Take(id string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return New()
	}
	s.remove(id)
	return c
}

// Snapshot returns the JSON form of the cart for id.
func (s *Store) Snapshot(id string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	s.View(id, func(c *Cart) {
		data, err = json.Marshal(c)
	})
	return data, err
}

// Restore replaces the cart for id with the one encoded in data.
func (s *Store) Restore(id string, data []byte) error {
	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(id, c)
	return nil
}
