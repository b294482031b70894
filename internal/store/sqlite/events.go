package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lifelogd/lifelogd/internal/domain"
)

const eventColumns = `id, timestamp, source, type, title, metadata, linked_uris, tags, mood, location, duration, created_at, updated_at`

// Create validates and persists a new event. The id and bookkeeping
// timestamps are assigned when the caller omits them. Nothing is written
// when validation fails.
func (s *Store) Create(ctx context.Context, data map[string]any) (*domain.Event, error) {
	if errs := domain.Validate(data); len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}

	event := domain.EventFromMap(data)
	now := time.Now().Format(time.RFC3339Nano)
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt == "" {
		event.CreatedAt = now
	}
	if event.UpdatedAt == "" {
		event.UpdatedAt = now
	}

	if err := s.insert(ctx, event); err != nil {
		return nil, &domain.StorageError{Op: "create", Err: err}
	}
	return &event, nil
}

// Get returns the event with compound fields deserialized, or (nil, false)
// when the id is absent.
func (s *Store) Get(ctx context.Context, id string) (*domain.Event, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.StorageError{Op: "get", Err: err}
	}
	return &event, true, nil
}

// Update shallow-merges patch over the stored record, re-validates the
// merged result and writes it back in one statement. created_at is
// preserved, updated_at refreshed. Either the full merged record lands
// or the row is untouched.
func (s *Store) Update(ctx context.Context, id string, patch map[string]any) (*domain.Event, error) {
	existing, found, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.NotFoundError{Kind: "event", ID: id}
	}

	merged, errs := domain.MergeAndValidate(*existing, patch)
	if len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}
	merged.UpdatedAt = time.Now().Format(time.RFC3339Nano)

	metadata, linkedURIs, tags, location, err := serializeCompound(merged)
	if err != nil {
		return nil, &domain.StorageError{Op: "update", Err: err}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE events SET timestamp = ?, source = ?, type = ?, title = ?, metadata = ?,
		 linked_uris = ?, tags = ?, mood = ?, location = ?, duration = ?, updated_at = ?
		 WHERE id = ?`,
		merged.Timestamp, merged.Source, merged.Type, merged.Title, metadata,
		linkedURIs, tags, nullableInt(merged.Mood), location, nullableInt(merged.Duration),
		merged.UpdatedAt, id,
	)
	if err != nil {
		return nil, &domain.StorageError{Op: "update", Err: err}
	}
	return &merged, nil
}

// Delete removes the record. The returned bool distinguishes an actual
// removal from a no-op; deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return false, &domain.StorageError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.StorageError{Op: "delete", Err: err}
	}
	return n > 0, nil
}

func (s *Store) insert(ctx context.Context, event domain.Event) error {
	metadata, linkedURIs, tags, location, err := serializeCompound(event)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp, event.Source, event.Type, event.Title,
		metadata, linkedURIs, tags, nullableInt(event.Mood), location,
		nullableInt(event.Duration), event.CreatedAt, event.UpdatedAt,
	)
	return err
}

// serializeCompound renders metadata/linked_uris/tags as JSON text and
// location as nullable JSON text (absent stays NULL, not "{}").
func serializeCompound(event domain.Event) (metadata, linkedURIs, tags string, location sql.NullString, err error) {
	m, err := json.Marshal(orEmptyMap(event.Metadata))
	if err != nil {
		return "", "", "", sql.NullString{}, err
	}
	l, err := json.Marshal(orEmptySlice(event.LinkedURIs))
	if err != nil {
		return "", "", "", sql.NullString{}, err
	}
	t, err := json.Marshal(orEmptySlice(event.Tags))
	if err != nil {
		return "", "", "", sql.NullString{}, err
	}
	if event.Location != nil {
		loc, err := json.Marshal(event.Location)
		if err != nil {
			return "", "", "", sql.NullString{}, err
		}
		location = sql.NullString{String: string(loc), Valid: true}
	}
	return string(m), string(l), string(t), location, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one row and deserializes the compound fields back to
// their structured form so callers never see the stored JSON text.
func scanEvent(row rowScanner) (domain.Event, error) {
	var (
		event                      domain.Event
		metadata, linkedURIs, tags string
		mood, duration             sql.NullInt64
		location                   sql.NullString
	)

	err := row.Scan(&event.ID, &event.Timestamp, &event.Source, &event.Type, &event.Title,
		&metadata, &linkedURIs, &tags, &mood, &location, &duration,
		&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return domain.Event{}, err
	}

	if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
		return domain.Event{}, err
	}
	if err := json.Unmarshal([]byte(linkedURIs), &event.LinkedURIs); err != nil {
		return domain.Event{}, err
	}
	if err := json.Unmarshal([]byte(tags), &event.Tags); err != nil {
		return domain.Event{}, err
	}
	if mood.Valid {
		n := int(mood.Int64)
		event.Mood = &n
	}
	if duration.Valid {
		n := int(duration.Int64)
		event.Duration = &n
	}
	if location.Valid {
		if err := json.Unmarshal([]byte(location.String), &event.Location); err != nil {
			return domain.Event{}, err
		}
	}
	return event, nil
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
