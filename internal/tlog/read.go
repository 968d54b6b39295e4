package tlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Message is one recorded log entry.
type Message struct {
	// Seq is the message's rowid, the tie-breaker for messages that
	// share a timestamp.
	Seq int64

	// Time is the simulation time at which the message was recorded,
	// as an offset from the start of the simulation.
	Time time.Duration

	Topic string
	Type  string
	Data  []byte
}

// StartTime returns the timestamp of the earliest recorded message.
// Zero for an empty (or nil) log.
func (s *Store) StartTime(ctx context.Context) (time.Duration, error) {
	return s.timeBound(ctx, "MIN")
}

// EndTime returns the timestamp of the latest recorded message.
// Zero for an empty (or nil) log.
func (s *Store) EndTime(ctx context.Context) (time.Duration, error) {
	return s.timeBound(ctx, "MAX")
}

func (s *Store) timeBound(ctx context.Context, agg string) (time.Duration, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}

	var nsec sql.NullInt64
	query := fmt.Sprintf("SELECT %s(time_recv) FROM messages", agg)
	if err := s.db.QueryRowContext(ctx, query).Scan(&nsec); err != nil {
		return 0, fmt.Errorf("query log bounds: %w", err)
	}
	if !nsec.Valid {
		return 0, nil
	}
	return time.Duration(nsec.Int64), nil
}

// QueryAll returns every message in the log in recorded order.
func (s *Store) QueryAll(ctx context.Context) ([]Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.time_recv, t.name, mt.name, m.message
		FROM messages m
		JOIN topics t ON m.topic_id = t.id
		JOIN message_types mt ON t.message_type_id = mt.id
		ORDER BY m.time_recv ASC, m.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// QueryRange returns every message with t0 <= time_recv <= t1, in
// recorded order. Bounds are inclusive so a record landing exactly on
// a tick boundary is never dropped.
func (s *Store) QueryRange(ctx context.Context, t0, t1 time.Duration) ([]Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.time_recv, t.name, mt.name, m.message
		FROM messages m
		JOIN topics t ON m.topic_id = t.id
		JOIN message_types mt ON t.message_type_id = mt.id
		WHERE m.time_recv >= ? AND m.time_recv <= ?
		ORDER BY m.time_recv ASC, m.id ASC
	`, int64(t0), int64(t1))
	if err != nil {
		return nil, fmt.Errorf("query message range: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Stats summarizes a log: time bounds, total message count, and
// per-message-type counts.
type Stats struct {
	Start    time.Duration
	End      time.Duration
	Messages int64
	ByType   map[string]int64
}

// Stats aggregates message counts by type alongside the log's time
// bounds.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByType: make(map[string]int64)}
	if s == nil || s.db == nil {
		return stats, nil
	}

	var err error
	if stats.Start, err = s.StartTime(ctx); err != nil {
		return stats, err
	}
	if stats.End, err = s.EndTime(ctx); err != nil {
		return stats, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT mt.name, COUNT(*)
		FROM messages m
		JOIN topics t ON m.topic_id = t.id
		JOIN message_types mt ON t.message_type_id = mt.id
		GROUP BY mt.name
		ORDER BY mt.name
	`)
	if err != nil {
		return stats, fmt.Errorf("query message counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return stats, fmt.Errorf("scan message count: %w", err)
		}
		stats.ByType[name] = count
		stats.Messages += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate message counts: %w", err)
	}
	return stats, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		var m Message
		var nsec int64
		if err := rows.Scan(&m.Seq, &nsec, &m.Topic, &m.Type, &m.Data); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Time = time.Duration(nsec)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
