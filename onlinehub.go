// Package onlinehub aggregates videos from many hosting platforms into one
// searchable catalog backed by a remote record store, with a single-active-
// player playback engine. The package wires the classifier, the admission
// guard, the record-store client, the catalog, and the fallback engine
// together; a UI shell owns rendering and user input and talks to the core
// only through Service.
package onlinehub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sihabxd/OnlineHub/cache"
	"github.com/sihabxd/OnlineHub/catalog"
	"github.com/sihabxd/OnlineHub/classify"
	"github.com/sihabxd/OnlineHub/config"
	"github.com/sihabxd/OnlineHub/guard"
	"github.com/sihabxd/OnlineHub/playback"
	"github.com/sihabxd/OnlineHub/store"
)

var (
	// ErrNotFound means the referenced record is not in the catalog.
	ErrNotFound = errors.New("onlinehub: video not found")

	// ErrInvalidEntry means admission declined the submission before any
	// remote call was made.
	ErrInvalidEntry = errors.New("onlinehub: invalid submission")
)

// Options carries UI-shell callbacks and overrides for Service
// construction.
type Options struct {
	Attach playback.AttachFunc // required: points the viewer at a source
	Listen playback.ListenFunc // optional: observes playback transitions

	// HTTPClient overrides the availability prober's client, mainly for
	// tests.
	HTTPClient *http.Client
}

// Service is the aggregator core. Construct with New; all collaborators
// are explicit, nothing is ambient.
type Service struct {
	cfg     config.Config
	store   *store.Client
	catalog *catalog.Catalog
	guard   *guard.Guard
	prober  *guard.Prober
	engine  *playback.Engine
	cache   *cache.Cache
	cron    *cron.Cron
}

// New builds a Service from configuration. The record-store base URL is
// required; the local cache is optional and opened lazily from
// cfg.Cache.Path.
func New(cfg config.Config, opts Options) (*Service, error) {
	if cfg.Store.BaseURL == "" {
		return nil, errors.New("onlinehub: store base URL is required")
	}
	if opts.Attach == nil {
		return nil, errors.New("onlinehub: attach callback is required")
	}

	prober := guard.NewProber(opts.HTTPClient, cfg.Guard.ProbeTimeout)
	s := &Service{
		cfg: cfg,
		store: store.New(store.Config{
			BaseURL:        cfg.Store.BaseURL,
			Token:          cfg.Store.Token,
			RequestTimeout: cfg.Store.RequestTimeout,
			MaxRetries:     cfg.Store.MaxRetries,
		}),
		catalog: catalog.New(),
		guard:   guard.New(cfg.Guard.SimilarityThreshold),
		prober:  prober,
		cron:    cron.New(),
	}
	s.engine = playback.New(playback.Config{
		StallTimeout: cfg.Playback.StallTimeout,
		Prober:       prober,
	}, opts.Attach, opts.Listen)

	if cfg.Cache.Path != "" {
		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			// Advisory only: a broken cache degrades, never blocks.
			slog.Warn("local cache unavailable", "path", cfg.Cache.Path, "err", err)
		} else {
			s.cache = c
		}
	}
	return s, nil
}

// Catalog exposes the query surface for the UI shell.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Engine exposes the playback engine so the viewer can report attempt
// outcomes.
func (s *Service) Engine() *playback.Engine { return s.engine }

// Add runs the admission pipeline for a raw URL: classify, duplicate
// check, availability probe, store insert, catalog add. The catalog is
// only mutated after the store accepted the record.
func (s *Service) Add(ctx context.Context, rawURL string) (catalog.Entry, error) {
	v, err := classify.Classify(rawURL)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	candidate := catalog.Entry{
		Video:         v,
		DurationLabel: catalog.DurationUnknown,
		CreatedAt:     time.Now().UTC(),
		Status:        catalog.StatusActive,
	}
	if msg := catalog.ValidateEntry(candidate); msg != "" {
		return catalog.Entry{}, fmt.Errorf("%w: %s", ErrInvalidEntry, msg)
	}

	if s.guard.IsDuplicate(v, s.catalog.Entries()) {
		return catalog.Entry{}, guard.ErrDuplicate
	}

	if avail := s.prober.Check(ctx, v); avail != guard.Available {
		slog.Warn("admitting video without availability confirmation",
			"platform", v.Platform, "result", avail.String())
	}

	rec, err := s.store.Create(ctx, store.FieldsFromEntry(candidate))
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("save video: %w", err)
	}
	entry, err := store.EntryFromRecord(rec)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("save video: %w", err)
	}

	s.catalog.Add(entry)
	s.guard.Remember(entry.Video)
	if s.cache != nil {
		if err := s.cache.Put(ctx, entry); err != nil {
			slog.Warn("cache write-behind failed", "record", entry.RecordID, "err", err)
		}
	}
	slog.Info("video admitted", "record", entry.RecordID, "platform", entry.Video.Platform)
	return entry, nil
}

// Refresh reconciles the catalog against the record store, the source of
// truth. When the store cannot answer, any local cache is loaded instead
// and the store error is still returned so callers know the view may be
// stale.
func (s *Service) Refresh(ctx context.Context) error {
	records, err := s.store.List(ctx)
	if err != nil {
		if s.cache != nil {
			if cached, cacheErr := s.cache.Load(ctx); cacheErr == nil {
				s.catalog.SetAll(cached)
				s.guard.Rebuild(s.catalog.Entries())
				slog.Warn("record store unreachable, serving cached catalog",
					"entries", len(cached), "err", err)
			} else {
				slog.Warn("record store and cache both unavailable", "err", cacheErr)
			}
		}
		return fmt.Errorf("refresh catalog: %w", err)
	}

	entries := make([]catalog.Entry, 0, len(records))
	for _, rec := range records {
		entry, err := store.EntryFromRecord(rec)
		if err != nil {
			// Schema violation aborts the whole operation, catalog
			// unchanged.
			return fmt.Errorf("refresh catalog: %w", err)
		}
		entries = append(entries, entry)
	}

	s.catalog.SetAll(entries)
	s.guard.Rebuild(s.catalog.Entries())
	if s.cache != nil {
		if err := s.cache.ReplaceAll(ctx, s.catalog.Entries()); err != nil {
			slog.Warn("cache refresh failed", "err", err)
		}
	}
	slog.Info("catalog refreshed", "entries", s.catalog.Len())
	return nil
}

// Play marks the entry as played and hands it to the fallback engine. Any
// prior non-terminal session is superseded.
func (s *Service) Play(recordID string) error {
	entry, ok := s.catalog.Get(recordID)
	if !ok {
		return ErrNotFound
	}
	s.catalog.MarkPlayed(recordID)
	s.engine.Load(entry)
	return nil
}

// StartAutoRefresh schedules periodic reconciles with the given cron spec
// (e.g. "@every 5m"). An empty spec falls back to the configured one; if
// both are empty this is a no-op.
func (s *Service) StartAutoRefresh(spec string) error {
	if spec == "" {
		spec = s.cfg.Refresh.Schedule
	}
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			slog.Warn("scheduled refresh failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.cron.Start()
	return nil
}

// Close stops scheduled work, supersedes any live playback session, and
// releases the cache.
func (s *Service) Close() error {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.engine.Stop()
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}
