package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/eliza/internal/model"
)

// ExportAll returns every live session with its turns, or only the
// session with the given ID.
func (s *SQLiteStore) ExportAll(ctx context.Context, id string) ([]model.Transcript, error) {
	var sessions []model.Session
	if id != "" {
		sess, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	} else {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+sessionColumns+` FROM sessions WHERE deleted_at IS NULL ORDER BY created_at, id`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			sess, err := scanSession(rows)
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, sess)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	out := make([]model.Transcript, 0, len(sessions))
	for _, sess := range sessions {
		turns, err := s.Turns(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Transcript{Session: sess, Turns: turns})
	}
	return out, nil
}

// Import stores transcripts from an export, keeping their IDs. Sessions
// that already exist are skipped. It returns the number imported.
func (s *SQLiteStore) Import(ctx context.Context, transcripts []model.Transcript) (int, error) {
	imported := 0
	for _, tr := range transcripts {
		ok, err := s.importOne(ctx, tr)
		if err != nil {
			return imported, fmt.Errorf("import session %s: %w", tr.Session.ID, err)
		}
		if ok {
			imported++
		}
	}
	return imported, nil
}

func (s *SQLiteStore) importOne(ctx context.Context, tr model.Transcript) (bool, error) {
	sess := tr.Session
	if sess.ID == "" {
		sess.ID = s.newID()
	}
	if sess.Script == "" {
		return false, fmt.Errorf("missing script")
	}
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = sess.CreatedAt
	}
	state, err := json.Marshal(sess.State)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, script, greeting, state, turns, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Script, sess.Greeting, string(state), len(tr.Turns),
		sess.CreatedAt.UTC().Format(time.RFC3339), sess.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	for i, t := range tr.Turns {
		if t.ID == "" {
			t.ID = s.newID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = sess.UpdatedAt
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO turns (id, session_id, seq, input, reply, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, sess.ID, i+1, t.Input, t.Reply, t.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return false, fmt.Errorf("insert turn %d: %w", i+1, err)
		}
	}
	return true, tx.Commit()
}
