package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/logger"
	"github.com/lifelogd/lifelogd/internal/store/sqlite"
)

type fakeExternal struct {
	event *domain.Event
	err   error
}

func (f *fakeExternal) Resolve(_ context.Context, _ string) (*domain.Event, error) {
	return f.event, f.err
}

type fakeLookup struct {
	byID       map[string]*domain.Event
	listResult []domain.Event
	lastFilter sqlite.Filter
}

func (f *fakeLookup) Get(_ context.Context, id string) (*domain.Event, bool, error) {
	event, ok := f.byID[id]
	return event, ok, nil
}

func (f *fakeLookup) List(_ context.Context, filter sqlite.Filter) ([]domain.Event, error) {
	f.lastFilter = filter
	return f.listResult, nil
}

func TestResolvePrefersExternal(t *testing.T) {
	want := &domain.Event{ID: "evt-1", Title: "from external"}
	f := New(&fakeExternal{event: want}, &fakeLookup{}, logger.New("error", false))

	got, err := f.Resolve(context.Background(), "life://strava/health.workout/evt-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveFallsBackToLocalID(t *testing.T) {
	want := &domain.Event{ID: "evt-1", Title: "local"}
	lookup := &fakeLookup{byID: map[string]*domain.Event{"evt-1": want}}
	f := New(&fakeExternal{err: errors.New("resolver offline")}, lookup, logger.New("error", false))

	got, err := f.Resolve(context.Background(), "life://strava/health.workout/evt-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveFallsBackToHintedList(t *testing.T) {
	lookup := &fakeLookup{listResult: []domain.Event{{ID: "evt-2", Title: "hinted"}}}
	f := New(&fakeExternal{err: errors.New("resolver offline")}, lookup, logger.New("error", false))

	got, err := f.Resolve(context.Background(), "life://strava/health.workout")
	require.NoError(t, err)
	assert.Equal(t, "evt-2", got.ID)
	assert.Equal(t, "strava", lookup.lastFilter.Source)
	assert.Equal(t, "health.workout", lookup.lastFilter.Type)
	assert.Equal(t, 1, lookup.lastFilter.Limit)
}

func TestResolveSurfacesOriginalError(t *testing.T) {
	extErr := errors.New("resolver offline")
	f := New(&fakeExternal{err: extErr}, &fakeLookup{}, logger.New("error", false))

	_, err := f.Resolve(context.Background(), "life://strava/health.workout")
	assert.ErrorIs(t, err, extErr, "local miss must surface the resolver's own error")
}

func TestResolveWithoutExternal(t *testing.T) {
	f := New(nil, &fakeLookup{}, logger.New("error", false))

	_, err := f.Resolve(context.Background(), "life://strava/health.workout")
	var rerr *domain.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "life://strava/health.workout", rerr.URI)
}
