package models

import "time"

// Transition is one applied state machine step for a chat.
type Transition struct {
	TraceID   string
	ChatID    int64
	Event     string
	FromState string
	ToState   string
	Reset     bool
	At        time.Time
}

// ProviderCall records one outbound provider invocation and how it ended.
type ProviderCall struct {
	TraceID  string
	ChatID   int64
	Provider string
	Query    string
	// Outcome is "ok" or a provider error kind name.
	Outcome   string
	Blocks    int
	Duration  time.Duration
	Discarded bool
	At        time.Time
}
