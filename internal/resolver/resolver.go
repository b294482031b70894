// Package resolver maps life:// identifiers to events, preferring the
// external resolution protocol and falling back to the local store.
package resolver

import (
	"context"
	"errors"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/logger"
	"github.com/lifelogd/lifelogd/internal/store/sqlite"
)

// External is the opaque resolution capability provided by the life-URI
// protocol library.
type External interface {
	Resolve(ctx context.Context, uri string) (*domain.Event, error)
}

// Lookup is the slice of the event store the facade needs for fallback.
type Lookup interface {
	Get(ctx context.Context, id string) (*domain.Event, bool, error)
	List(ctx context.Context, f sqlite.Filter) ([]domain.Event, error)
}

// Facade resolves URIs externally first and degrades to a local lookup
// keyed on the URI's source/type/id segments.
type Facade struct {
	external External
	store    Lookup
	logger   logger.Logger
}

func New(external External, store Lookup, log logger.Logger) *Facade {
	return &Facade{
		external: external,
		store:    store,
		logger:   log,
	}
}

// Resolve returns the event behind uri. When the external resolver fails,
// the URI is parsed locally and the store queried with its hints; if
// nothing matches, the original resolver error is surfaced.
func (f *Facade) Resolve(ctx context.Context, uri string) (*domain.Event, error) {
	var extErr error
	if f.external != nil {
		event, err := f.external.Resolve(ctx, uri)
		if err == nil {
			return event, nil
		}
		extErr = err
	} else {
		extErr = &domain.ResolutionError{URI: uri, Err: errors.New("no external resolver configured")}
	}

	f.logger.Debug("external resolution failed, trying local store",
		logger.String("uri", uri),
		logger.Error(extErr))

	parsed, err := domain.ParseLifeURI(uri)
	if err != nil {
		return nil, &domain.ResolutionError{URI: uri, Err: err}
	}

	if parsed.ID != "" {
		event, found, err := f.store.Get(ctx, parsed.ID)
		if err != nil {
			return nil, err
		}
		if found {
			return event, nil
		}
	}

	events, err := f.store.List(ctx, sqlite.Filter{
		Source: parsed.Source,
		Type:   parsed.Type,
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return &events[0], nil
	}

	return nil, extErr
}
