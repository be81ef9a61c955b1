package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/eliza/internal/model"
)

// SearchParams holds parameters for searching turns.
type SearchParams struct {
	SessionID string
	Query     string
	Limit     int
}

// SearchResult is a matching turn and the script its session runs.
type SearchResult struct {
	model.Turn
	Script string `json:"script"`
}

// Search finds turns whose input or reply contains the query, newest first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"s.deleted_at IS NULL", "(t.input LIKE ? OR t.reply LIKE ?)"}
	args := []interface{}{query, query}

	if p.SessionID != "" {
		id, err := s.resolveID(ctx, p.SessionID, false)
		if err != nil {
			return nil, err
		}
		where = append(where, "t.session_id = ?")
		args = append(args, id)
	}

	sql := fmt.Sprintf(`
		SELECT t.id, t.session_id, t.seq, t.input, t.reply, t.created_at, s.script
		FROM turns t
		INNER JOIN sessions s ON s.id = t.session_id
		WHERE %s
		ORDER BY t.created_at DESC, t.session_id, t.seq DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Seq, &r.Input, &r.Reply, &createdAt, &r.Script); err != nil {
			return nil, err
		}
		r.Turn.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}
