package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"dialoguebot/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

var journalTables = []string{"dialogue_transitions", "provider_calls"}

type ClickHouseJournal struct {
	conn clickhouse.Conn
}

// NewClickHouseJournal opens a native connection to ClickHouse and pings it.
func NewClickHouseJournal(host string, port int, database, user, password string, useTLS bool) (*ClickHouseJournal, error) {
	options := &clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", host, port)},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	}
	if useTLS {
		options.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseJournal{conn: conn}, nil
}

// Initialize checks that the journal tables exist. Tables are created by cmd/migrate.
func (j *ClickHouseJournal) Initialize(ctx context.Context) error {
	for _, table := range journalTables {
		var exists uint8
		if err := j.conn.QueryRow(ctx, "EXISTS TABLE "+table).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if exists == 0 {
			return fmt.Errorf("table %s is missing, run migrations first", table)
		}
	}
	return nil
}

func (j *ClickHouseJournal) RecordTransition(ctx context.Context, t models.Transition) error {
	err := j.conn.Exec(ctx,
		`INSERT INTO dialogue_transitions (trace_id, chat_id, event, from_state, to_state, reset, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TraceID, t.ChatID, t.Event, t.FromState, t.ToState, t.Reset, t.At.UTC())
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

func (j *ClickHouseJournal) RecordProviderCall(ctx context.Context, c models.ProviderCall) error {
	err := j.conn.Exec(ctx,
		`INSERT INTO provider_calls (trace_id, chat_id, provider, query, outcome, blocks, duration_ms, discarded, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.TraceID, c.ChatID, c.Provider, c.Query, c.Outcome, uint32(c.Blocks), c.Duration.Milliseconds(), c.Discarded, c.At.UTC())
	if err != nil {
		return fmt.Errorf("failed to record provider call: %w", err)
	}
	return nil
}

// TransitionsForChat returns the chat's recorded transitions, oldest first.
func (j *ClickHouseJournal) TransitionsForChat(ctx context.Context, chatID int64) ([]models.Transition, error) {
	rows, err := j.conn.Query(ctx,
		`SELECT trace_id, chat_id, event, from_state, to_state, reset, at FROM dialogue_transitions WHERE chat_id = ? ORDER BY at`,
		chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	var out []models.Transition
	for rows.Next() {
		var t models.Transition
		if err := rows.Scan(&t.TraceID, &t.ChatID, &t.Event, &t.FromState, &t.ToState, &t.Reset, &t.At); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ProviderOutcomes counts recorded provider calls per outcome for one provider.
func (j *ClickHouseJournal) ProviderOutcomes(ctx context.Context, provider string) (map[string]uint64, error) {
	rows, err := j.conn.Query(ctx,
		`SELECT outcome, count() FROM provider_calls WHERE provider = ? GROUP BY outcome`, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to count provider outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var (
			outcome string
			n       uint64
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan provider outcome: %w", err)
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

func (j *ClickHouseJournal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}
