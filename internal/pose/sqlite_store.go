package pose

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pose_frames (
	action      TEXT    NOT NULL,
	frame_index INTEGER NOT NULL,
	keypoints   TEXT,
	PRIMARY KEY (action, frame_index)
);
`

// SQLiteStore keeps one row per frame keyed by (action, frame_index).
// A NULL keypoints column is a frame with no detected person.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens a SQLite database and runs migrations.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Actions lists distinct actions in name order.
func (s *SQLiteStore) Actions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT action FROM pose_frames ORDER BY action`)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// LoadFrames returns the action's frames ordered by frame index. An action
// without rows is reported as ErrActionNotFound.
func (s *SQLiteStore) LoadFrames(ctx context.Context, action string) ([]Frame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT frame_index, keypoints FROM pose_frames WHERE action = ? ORDER BY frame_index`,
		action,
	)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			idx int
			kp  sql.NullString
		)
		if err := rows.Scan(&idx, &kp); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}

		f := Frame{Index: idx}
		if kp.Valid {
			if err := json.Unmarshal([]byte(kp.String), &f.Detection); err != nil {
				return nil, fmt.Errorf("decode frame %s/%d: %w", action, idx, err)
			}
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, action)
	}
	return frames, nil
}

// PutFrames upserts the frames of one action in a single transaction.
func (s *SQLiteStore) PutFrames(ctx context.Context, action string, frames []Frame) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO pose_frames (action, frame_index, keypoints) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range frames {
		var kp interface{}
		if f.Detection != nil {
			data, err := json.Marshal(f.Detection)
			if err != nil {
				return fmt.Errorf("encode frame %d: %w", f.Index, err)
			}
			kp = string(data)
		}
		if _, err := stmt.ExecContext(ctx, action, f.Index, kp); err != nil {
			return fmt.Errorf("insert frame %s/%d: %w", action, f.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
