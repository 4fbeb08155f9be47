package stubs

import (
	"context"
	"errors"
	"sync"

	"dialoguebot/internal/models"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("journal is closed")

// MemoryJournal is an in-memory Journal used in tests and when no ClickHouse is configured.
type MemoryJournal struct {
	mu          sync.RWMutex
	transitions []models.Transition
	calls       []models.ProviderCall
	closed      bool
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (m *MemoryJournal) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = false
	return nil
}

func (m *MemoryJournal) RecordTransition(ctx context.Context, t models.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.transitions = append(m.transitions, t)
	return nil
}

func (m *MemoryJournal) RecordProviderCall(ctx context.Context, c models.ProviderCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.calls = append(m.calls, c)
	return nil
}

// Transitions returns a copy of the recorded transitions, optionally filtered by chat (0 means all).
func (m *MemoryJournal) Transitions(chatID int64) []models.Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Transition, 0, len(m.transitions))
	for _, t := range m.transitions {
		if chatID == 0 || t.ChatID == chatID {
			out = append(out, t)
		}
	}
	return out
}

// ProviderCalls returns a copy of the recorded provider calls, optionally filtered by chat.
func (m *MemoryJournal) ProviderCalls(chatID int64) []models.ProviderCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ProviderCall, 0, len(m.calls))
	for _, c := range m.calls {
		if chatID == 0 || c.ChatID == chatID {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemoryJournal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
