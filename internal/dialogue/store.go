package dialogue

import "sync"

type entry struct {
	mu    sync.Mutex
	state State
	gen   uint64
}

// Store keeps the dialogue state of every chat in memory.
//
// Mutations of one chat are serialized by that chat's own mutex; chats never
// share a lock. Every reset to Start advances the chat's generation so callers
// can tell whether a reset happened while they were waiting on I/O.
type Store struct {
	entries sync.Map // int64 -> *entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) entry(chatID int64) *entry {
	if v, ok := s.entries.Load(chatID); ok {
		return v.(*entry)
	}
	v, _ := s.entries.LoadOrStore(chatID, &entry{state: Start{}})
	return v.(*entry)
}

// Get returns the state of a chat, or Start if the chat is unknown.
func (s *Store) Get(chatID int64) State {
	v, ok := s.entries.Load(chatID)
	if !ok {
		return Start{}
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Set replaces the state of a chat unconditionally.
func (s *Store) Set(chatID int64, st State) {
	if st == nil {
		st = Start{}
	}
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = st
}

// Remove resets a chat to Start.
func (s *Store) Remove(chatID int64) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Start{}
	e.gen++
}

// Update runs fn with the current state while holding the chat's lock and
// stores the state it returns. When fn reports a reset the generation advances.
// The returned generation is the one in effect after the update.
func (s *Store) Update(chatID int64, fn func(State) (State, bool)) (prev, next State, gen uint64) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()

	prev = e.state
	next, reset := fn(prev)
	if next == nil {
		next = Start{}
	}
	if reset {
		e.gen++
	}
	e.state = next
	return prev, next, e.gen
}

// Generation returns the reset counter of a chat.
func (s *Store) Generation(chatID int64) uint64 {
	v, ok := s.entries.Load(chatID)
	if !ok {
		return 0
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// ResetIf resets the chat to Start only if no reset happened since gen was observed.
func (s *Store) ResetIf(chatID int64, gen uint64) bool {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return false
	}
	e.state = Start{}
	e.gen++
	return true
}

// Len returns the number of chats seen so far.
func (s *Store) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
