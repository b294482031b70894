package sqlite

import (
	"context"
	"strings"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/utils"
)

const (
	// DefaultListLimit applies when a list filter carries no limit.
	DefaultListLimit = 100
	// DefaultSearchLimit applies when a search carries no limit.
	DefaultSearchLimit = 50
)

// Filter narrows a List query. All criteria combine conjunctively except
// Tags, which match disjunctively across the candidate values.
type Filter struct {
	Source    string
	Type      string
	StartDate string // inclusive lower bound on timestamp
	EndDate   string // inclusive upper bound on timestamp
	Tags      []string
	Limit     int
	Offset    int
	OrderBy   string // column name, default "timestamp"
	Order     string // "asc" | "desc", default "desc"
}

// Column whitelist for orderBy; anything else falls back to timestamp.
var orderableColumns = map[string]bool{
	"timestamp":  true,
	"source":     true,
	"type":       true,
	"title":      true,
	"mood":       true,
	"duration":   true,
	"created_at": true,
	"updated_at": true,
}

// List returns events matching the filter. Timestamps are ISO-8601 so the
// date range is a plain lexicographic comparison. Tag matching is a
// substring LIKE against the serialized tags JSON: filtering on "gym"
// also matches a "gymnastics" tag. Kept for compatibility with existing
// clients even though it is more fuzzy than exact-set membership.
func (s *Store) List(ctx context.Context, f Filter) ([]domain.Event, error) {
	where, args := buildWhere(f)

	orderBy := f.OrderBy
	if !orderableColumns[orderBy] {
		orderBy = "timestamp"
	}
	direction := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		direction = "ASC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		` ORDER BY ` + orderBy + ` ` + direction + ` LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	return s.queryEvents(ctx, "list", query, args...)
}

// Search matches text case-insensitively against title, serialized
// metadata and serialized tags, newest first.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + strings.ToLower(text) + "%"

	query := `SELECT ` + eventColumns + ` FROM events
		WHERE lower(title) LIKE ? OR lower(metadata) LIKE ? OR lower(tags) LIKE ?
		ORDER BY timestamp DESC LIMIT ?`

	return s.queryEvents(ctx, "search", query, pattern, pattern, pattern, limit)
}

// Stats summarizes the whole table.
type Stats struct {
	Total    int            `json:"total"`
	BySource map[string]int `json:"bySource"`
	ByType   map[string]int `json:"byType"`
}

// Stats returns the total event count plus per-source and per-type counts.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		BySource: map[string]int{},
		ByType:   map[string]int{},
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&stats.Total); err != nil {
		return nil, &domain.StorageError{Op: "stats", Err: err}
	}
	if err := s.countBy(ctx, "source", stats.BySource); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "type", stats.ByType); err != nil {
		return nil, err
	}
	return stats, nil
}

// Sources returns the distinct source values, alphabetically.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "source")
}

// Types returns the distinct type values, alphabetically.
func (s *Store) Types(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "type")
}

func buildWhere(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.StartDate != "" {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, f.EndDate)
	}
	if len(f.Tags) > 0 {
		tagClauses := make([]string, 0, len(f.Tags))
		for _, tag := range f.Tags {
			tagClauses = append(tagClauses, "tags LIKE ?")
			args = append(args, "%"+tag+"%")
		}
		clauses = append(clauses, "("+strings.Join(tagClauses, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) queryEvents(ctx context.Context, op, query string, args ...any) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	defer utils.Close(rows)

	events := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: op, Err: err}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	return events, nil
}

func (s *Store) countBy(ctx context.Context, column string, out map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM events GROUP BY `+column)
	if err != nil {
		return &domain.StorageError{Op: "stats", Err: err}
	}
	defer utils.Close(rows)

	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return &domain.StorageError{Op: "stats", Err: err}
		}
		out[key] = count
	}
	return rows.Err()
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT `+column+` FROM events ORDER BY `+column)
	if err != nil {
		return nil, &domain.StorageError{Op: "distinct", Err: err}
	}
	defer utils.Close(rows)

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, &domain.StorageError{Op: "distinct", Err: err}
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "distinct", Err: err}
	}
	return values, nil
}
