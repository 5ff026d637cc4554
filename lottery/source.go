package lottery

import (
	"context"
	"errors"
	"log/slog"

	"scenelab/logx"
)

// Source chains the results API, the sqlite cache, and the demo draw. It
// never fails; each step down the chain logs why it was taken.
type Source struct {
	log    *slog.Logger
	client *Client
	store  *Store
}

// NewSource builds a source. Either client or store may be nil; that step of
// the chain is skipped.
func NewSource(log *slog.Logger, client *Client, store *Store) *Source {
	if log == nil {
		log = logx.Discard()
	}
	return &Source{
		log:    log.With("component", "lottery"),
		client: client,
		store:  store,
	}
}

// Next returns the draw the scene should show and where it came from. A live
// result is cached before it is returned.
func (s *Source) Next(ctx context.Context) (Draw, Origin) {
	if s.client != nil {
		d, err := s.client.Fetch(ctx)
		if err == nil {
			if s.store != nil {
				if err := s.store.Save(ctx, d); err != nil {
					s.log.Warn("caching draw failed", "date", d.Date, "error", err)
				}
			}
			return d, OriginAPI
		}
		s.log.Warn("results api unavailable, trying cache", "error", err)
	}

	if s.store != nil {
		d, err := s.store.Latest(ctx)
		if err == nil {
			s.log.Info("using cached draw", "date", d.Date)
			return d, OriginCache
		}
		if errors.Is(err, ErrNoDraws) {
			s.log.Warn("draw cache is empty")
		} else {
			s.log.Warn("draw cache unreadable", "error", err)
		}
	}

	s.log.Warn("using built-in demo draw")
	return DemoDraw(), OriginDemo
}
