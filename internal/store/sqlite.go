package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/eliza/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		script      TEXT NOT NULL,
		greeting    TEXT NOT NULL DEFAULT '',
		state       TEXT NOT NULL,
		turns       INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_deleted ON sessions(deleted_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_script ON sessions(script);

	CREATE TABLE IF NOT EXISTS turns (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		input       TEXT NOT NULL,
		reply       TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		UNIQUE (session_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, p CreateParams) (*model.Session, error) {
	if p.Script == "" {
		return nil, errors.New("create session: script is required")
	}
	now := time.Now().UTC()
	id := s.newID()

	state, err := json.Marshal(p.State)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}

	ts := now.Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, script, greeting, state, turns, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		id, p.Script, p.Greeting, string(state), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	now, _ = time.Parse(time.RFC3339, ts)
	return &model.Session{
		ID:        id,
		Script:    p.Script,
		Greeting:  p.Greeting,
		State:     p.State,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

const sessionColumns = `id, script, greeting, state, turns, created_at, updated_at, deleted_at`

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Session, error) {
	full, err := s.resolveID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND deleted_at IS NULL`, full)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// resolveID expands a session ID prefix to the full ID of a live session.
// Deleted sessions match only when withDeleted is set.
func (s *SQLiteStore) resolveID(ctx context.Context, prefix string, withDeleted bool) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("session id is required")
	}
	query := `SELECT id FROM sessions WHERE id LIKE ? AND deleted_at IS NULL LIMIT 2`
	if withDeleted {
		query = `SELECT id FROM sessions WHERE id LIKE ? LIMIT 2`
	}
	rows, err := s.db.QueryContext(ctx, query, strings.ToUpper(prefix)+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("session %s: %w", prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("session id %q is ambiguous", prefix)
}

func (s *SQLiteStore) Record(ctx context.Context, p RecordParams) (*model.Turn, error) {
	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)

	state, err := json.Marshal(p.State)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var turns int
	err = tx.QueryRowContext(ctx,
		`SELECT turns FROM sessions WHERE id = ? AND deleted_at IS NULL`, p.SessionID).Scan(&turns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", p.SessionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	t := &model.Turn{
		ID:        s.newID(),
		SessionID: p.SessionID,
		Seq:       turns + 1,
		Input:     p.Input,
		Reply:     p.Reply,
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, ts)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, seq, input, reply, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Seq, t.Input, t.Reply, ts)
	if err != nil {
		return nil, fmt.Errorf("insert turn: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET state = ?, turns = ?, updated_at = ? WHERE id = ?`,
		string(state), t.Seq, ts, p.SessionID)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

const turnColumns = `id, session_id, seq, input, reply, created_at`

func (s *SQLiteStore) Turns(ctx context.Context, id string) ([]model.Turn, error) {
	full, err := s.resolveID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+turnColumns+` FROM turns WHERE session_id = ? ORDER BY seq`, full)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Session, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if p.Script != "" {
		where = append(where, "script = ?")
		args = append(args, p.Script)
	}
	if p.Since != "" {
		d, err := parseAge(p.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since: %w", err)
		}
		where = append(where, "updated_at >= ?")
		args = append(args, time.Now().UTC().Add(-d).Format(time.RFC3339))
	}

	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE %s ORDER BY updated_at DESC, id DESC LIMIT ?`,
		sessionColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	id, err := s.resolveID(ctx, p.ID, p.Hard)
	if err != nil {
		return err
	}
	if p.Hard {
		// turns go with the session through ON DELETE CASCADE
		_, err = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (model.Session, error) {
	var m model.Session
	var state, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&m.ID, &m.Script, &m.Greeting, &state, &m.Turns, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return m, err
	}

	if err := json.Unmarshal([]byte(state), &m.State); err != nil {
		return m, fmt.Errorf("session %s: decode state: %w", m.ID, err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		m.DeletedAt = &t
	}
	return m, nil
}

func scanTurn(row scanner) (model.Turn, error) {
	var t model.Turn
	var createdAt string
	if err := row.Scan(&t.ID, &t.SessionID, &t.Seq, &t.Input, &t.Reply, &createdAt); err != nil {
		return t, err
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

// parseAge parses a duration like "7d", "24h", "30m".
var ageRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

func parseAge(s string) (time.Duration, error) {
	m := ageRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
