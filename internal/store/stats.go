package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string        `json:"db_path"`
	DBSizeBytes    int64         `json:"db_size_bytes"`
	TotalSessions  int           `json:"total_sessions"`
	ActiveSessions int           `json:"active_sessions"`
	TotalTurns     int           `json:"total_turns"`
	LastActive     string        `json:"last_active,omitempty"`
	Scripts        []ScriptStats `json:"scripts"`
}

// ScriptStats holds per-script counts.
type ScriptStats struct {
	Script   string `json:"script"`
	Sessions int    `json:"sessions"`
	Turns    int    `json:"turns"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.TotalSessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE deleted_at IS NULL`).Scan(&st.ActiveSessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&st.TotalTurns)
	s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(updated_at), '') FROM sessions WHERE deleted_at IS NULL`).Scan(&st.LastActive)

	rows, err := s.db.QueryContext(ctx, `
		SELECT script, COUNT(*) AS cnt, COALESCE(SUM(turns), 0)
		FROM sessions WHERE deleted_at IS NULL
		GROUP BY script ORDER BY cnt DESC, script`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc ScriptStats
		rows.Scan(&sc.Script, &sc.Sessions, &sc.Turns)
		st.Scripts = append(st.Scripts, sc)
	}

	return st, rows.Err()
}
