package tlog

import (
	"context"
	"fmt"
	"time"
)

// Writer appends messages to a tlog. Playback never writes; the
// Writer exists so tests and tooling can assemble recordings.
type Writer struct {
	store  *Store
	topics map[string]int64 // topic name -> topic id
}

// NewWriter wraps a store created with Create.
func NewWriter(store *Store) *Writer {
	return &Writer{
		store:  store,
		topics: make(map[string]int64),
	}
}

// Append records one message on the given topic at the given
// simulation time. The topic and message type are interned on first
// use.
func (w *Writer) Append(ctx context.Context, topic, msgType string, t time.Duration, data []byte) error {
	topicID, err := w.topicID(ctx, topic, msgType)
	if err != nil {
		return err
	}

	_, err = w.store.db.ExecContext(ctx, `
		INSERT INTO messages (time_recv, topic_id, message) VALUES (?, ?, ?)
	`, int64(t), topicID, data)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (w *Writer) topicID(ctx context.Context, topic, msgType string) (int64, error) {
	key := topic + "\x00" + msgType
	if id, ok := w.topics[key]; ok {
		return id, nil
	}

	if _, err := w.store.db.ExecContext(ctx, `
		INSERT INTO message_types (name) VALUES (?) ON CONFLICT(name) DO NOTHING
	`, msgType); err != nil {
		return 0, fmt.Errorf("intern message type: %w", err)
	}

	var typeID int64
	if err := w.store.db.QueryRowContext(ctx, `
		SELECT id FROM message_types WHERE name = ?
	`, msgType).Scan(&typeID); err != nil {
		return 0, fmt.Errorf("lookup message type: %w", err)
	}

	if _, err := w.store.db.ExecContext(ctx, `
		INSERT INTO topics (name, message_type_id) VALUES (?, ?)
		ON CONFLICT(name, message_type_id) DO NOTHING
	`, topic, typeID); err != nil {
		return 0, fmt.Errorf("intern topic: %w", err)
	}

	var topicID int64
	if err := w.store.db.QueryRowContext(ctx, `
		SELECT id FROM topics WHERE name = ? AND message_type_id = ?
	`, topic, typeID).Scan(&topicID); err != nil {
		return 0, fmt.Errorf("lookup topic: %w", err)
	}

	w.topics[key] = topicID
	return topicID, nil
}
