// Package session serves resolution to many concurrent sessions: catalogs
// are built once per session and cached, resolutions run on a bounded pool,
// and each session's pending clarification lives in a Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/grammar"
	"github.com/appengine-ltd/command-it/internal/logging"
	"github.com/appengine-ltd/command-it/internal/resolve"
)

var ErrUnknownSession = errors.New("unknown session")

// NewID returns a fresh session identity.
func NewID() string {
	return uuid.NewString()
}

// Service owns the sessions. A session's catalog may be evicted from the
// cache at any time; it is rebuilt from the source the session was opened
// with.
type Service struct {
	Engine   *resolve.Engine
	Compiler *grammar.Compiler
	Catalogs *Cache[*catalog.Catalog]
	Pool     *Pool
	Store    Store
	Logger   zerolog.Logger

	mu      sync.Mutex
	sources map[string]catalog.Source
}

func NewService(engine *resolve.Engine, catalogs *Cache[*catalog.Catalog], pool *Pool, store Store) *Service {
	return &Service{
		Engine:   engine,
		Compiler: grammar.NewCompiler(engine),
		Catalogs: catalogs,
		Pool:     pool,
		Store:    store,
		Logger:   logging.Logger.With().Str("component", "session").Logger(),
		sources:  make(map[string]catalog.Source),
	}
}

// Open builds the session's catalog from src, or returns the cached one. A
// session keeps the source it was first opened with; Reload replaces it.
func (s *Service) Open(ctx context.Context, id string, src catalog.Source) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if known, ok := s.source(id); ok {
		src = known
	}
	cat, err := s.build(id, src)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	s.setSource(id, src)
	return cat, nil
}

func (s *Service) build(id string, src catalog.Source) (*catalog.Catalog, error) {
	cat, cached, err := s.Catalogs.GetOrBuild(id, func() (*catalog.Catalog, error) {
		return catalog.Build(src, s.Engine.Lex)
	})
	if err != nil {
		return nil, err
	}
	if !cached {
		s.Logger.Info().Str("session", id).Str("target", cat.Target()).Int("entries", cat.Len()).Msg("catalog built")
	}
	return cat, nil
}

func (s *Service) source(id string) (catalog.Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	return src, ok
}

func (s *Service) setSource(id string, src catalog.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sources == nil {
		s.sources = make(map[string]catalog.Source)
	}
	s.sources[id] = src
}

// Reload rebuilds the session's catalog and drops any pending question that
// referred to the old one.
func (s *Service) Reload(ctx context.Context, id string, src catalog.Source) (*catalog.Catalog, error) {
	cat, err := catalog.Build(src, s.Engine.Lex)
	if err != nil {
		return nil, fmt.Errorf("reload session %s: %w", id, err)
	}
	s.setSource(id, src)
	s.Catalogs.Put(id, cat)
	if err := s.Store.Clear(ctx, id); err != nil {
		return nil, err
	}
	s.Logger.Info().Str("session", id).Int("entries", cat.Len()).Msg("catalog reloaded")
	return cat, nil
}

// Catalog returns the session's catalog, rebuilding it when the cache has
// dropped it.
func (s *Service) Catalog(id string) (*catalog.Catalog, error) {
	if cat, ok := s.Catalogs.Get(id); ok {
		return cat, nil
	}
	src, ok := s.source(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	cat, err := s.build(id, src)
	if err != nil {
		return nil, fmt.Errorf("rebuild session %s: %w", id, err)
	}
	return cat, nil
}

// Close forgets the session: its source, cached catalog and pending question.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sources, id)
	s.mu.Unlock()
	s.Catalogs.Remove(id)
	return s.Store.Clear(ctx, id)
}

// Resolve runs the scored path for one utterance. Reading and replacing the
// pending clarification is atomic with the resolution.
func (s *Service) Resolve(ctx context.Context, id, utterance string) (resolve.Result, error) {
	cat, err := s.Catalog(id)
	if err != nil {
		return resolve.Result{}, err
	}
	var res resolve.Result
	err = s.Store.Update(ctx, id, func(cur *resolve.Pending) (*resolve.Pending, error) {
		if err := s.Pool.Do(ctx, func() {
			res = s.Engine.Resolve(ctx, utterance, cat, cur)
		}); err != nil {
			return cur, err
		}
		return res.Pending(), nil
	})
	return res, err
}

// Compile is Resolve through the grammar compiler.
func (s *Service) Compile(ctx context.Context, id, utterance string) (resolve.Result, *grammar.Analysis, error) {
	cat, err := s.Catalog(id)
	if err != nil {
		return resolve.Result{}, nil, err
	}
	var (
		res      resolve.Result
		analysis *grammar.Analysis
	)
	err = s.Store.Update(ctx, id, func(cur *resolve.Pending) (*resolve.Pending, error) {
		if err := s.Pool.Do(ctx, func() {
			res, analysis = s.Compiler.Compile(ctx, utterance, cat, cur)
		}); err != nil {
			return cur, err
		}
		return res.Pending(), nil
	})
	return res, analysis, err
}

// Ask records a question raised outside the engine, such as by an
// augmenter. Only one may be outstanding.
func (s *Service) Ask(ctx context.Context, id string, p *resolve.Pending) error {
	return s.Store.Ask(ctx, id, p)
}

func (s *Service) Pending(ctx context.Context, id string) (*resolve.Pending, error) {
	return s.Store.Get(ctx, id)
}

// ResolveAll resolves independent utterances concurrently, ignoring and not
// touching the session's pending clarification. Results keep input order.
func (s *Service) ResolveAll(ctx context.Context, id string, utterances []string) ([]resolve.Result, error) {
	cat, err := s.Catalog(id)
	if err != nil {
		return nil, err
	}
	out := make([]resolve.Result, len(utterances))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range utterances {
		i, u := i, u
		g.Go(func() error {
			return s.Pool.Do(gctx, func() {
				out[i] = s.Engine.Resolve(gctx, u, cat, nil)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
