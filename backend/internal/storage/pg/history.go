package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/drafthook/drafthook/shared/domain"
)

// The session record's nested item list does not fit one flat row, so it is
// normalized: one sessions row per dispatch, one session_items row per
// delivery outcome, ordered by position.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id SERIAL PRIMARY KEY,
	uid UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	total INT NOT NULL,
	success INT NOT NULL,
	failed INT NOT NULL
);
CREATE TABLE IF NOT EXISTS session_items (
	id SERIAL PRIMARY KEY,
	session_id INT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position INT NOT NULL,
	item_type TEXT NOT NULL,
	content TEXT,
	destination TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS session_items_session_id_idx ON session_items (session_id, position);
`

func (s *Storage) ensureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// SaveSession persists one session record with all its items.
func (s *Storage) SaveSession(record domain.SessionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveSession(tx, record)
	})
}

// ListSessions returns all persisted session records, newest first, capped at
// domain.MaxHistoryEntries.
func (s *Storage) ListSessions() ([]domain.SessionRecord, error) {
	return s.listSessions(s.db)
}

// ClearSessions wipes the whole history.
func (s *Storage) ClearSessions() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`TRUNCATE TABLE session_items, sessions`); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		return nil
	})
}

func (s *Storage) saveSession(q Querier, record domain.SessionRecord) error {
	var sessionId int64
	err := q.QueryRow(`
		INSERT INTO sessions (uid, created_at, total, success, failed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		record.Uid, record.Timestamp, record.Stats.Total, record.Stats.Success, record.Stats.Failed,
	).Scan(&sessionId)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for i, item := range record.Items {
		_, err := q.Exec(`
			INSERT INTO session_items (session_id, position, item_type, content, destination, status, error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sessionId, i+1, item.Type, item.Content, item.Destination, item.Status, nullable(item.Error), item.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session item %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Storage) listSessions(q Querier) ([]domain.SessionRecord, error) {
	rows, err := q.Query(`
		SELECT id, uid, created_at, total, success, failed
		FROM sessions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`,
		domain.MaxHistoryEntries,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []domain.SessionRecord
	var ids []int64
	byId := make(map[int64]int)
	for rows.Next() {
		var id int64
		var rec domain.SessionRecord
		if err := rows.Scan(&id, &rec.Uid, &rec.Timestamp, &rec.Stats.Total, &rec.Stats.Success, &rec.Stats.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		byId[id] = len(records)
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	itemRows, err := q.Query(`
		SELECT session_id, item_type, content, destination, status, COALESCE(error, ''), created_at
		FROM session_items
		WHERE session_id = ANY($1)
		ORDER BY session_id, position`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var sessionId int64
		var item domain.DeliveryOutcome
		if err := itemRows.Scan(&sessionId, &item.Type, &item.Content, &item.Destination, &item.Status, &item.Error, &item.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan session item: %w", err)
		}
		idx, ok := byId[sessionId]
		if !ok {
			continue
		}
		records[idx].Items = append(records[idx].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session items: %w", err)
	}

	return records, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
