package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/config"
	"github.com/appengine-ltd/command-it/internal/lexicon"
	"github.com/appengine-ltd/command-it/internal/nlp"
	"github.com/appengine-ltd/command-it/internal/resolve"
	"github.com/appengine-ltd/command-it/internal/session"
)

// Catalog source flags shared by every command that resolves.
var (
	catalogPath string
	catalogType string
	jsonOutput  bool
)

func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "Catalog source: .py, .go, .yaml or .json")
	cmd.Flags().StringVar(&catalogType, "type", "", "Class or type to read from a source file (default: first public one)")
	_ = cmd.MarkFlagRequired("catalog")
}

// app wires the engine and session service from settings.
type app struct {
	lex     *lexicon.Lexicon
	engine  *resolve.Engine
	service *session.Service
	closers []io.Closer
}

func newApp(cfg config.Config) (*app, error) {
	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		f, err := os.Open(cfg.Lexicon.Path)
		if err != nil {
			return nil, fmt.Errorf("open lexicon: %w", err)
		}
		lex, err = lexicon.Load(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("load lexicon %s: %w", cfg.Lexicon.Path, err)
		}
	}

	engine := resolve.New(lex, resolve.Options{
		Threshold:   cfg.Engine.Threshold,
		Margin:      cfg.Engine.Margin,
		TopK:        cfg.Engine.TopK,
		Suggestions: cfg.Engine.Suggestions,
	})
	engine.Annotator.MaxSynonyms = cfg.Engine.MaxSynonyms
	engine.Annotator.Senses = cfg.Engine.SynonymSenses
	engine.Annotator.Correct = cfg.Engine.SpellCorrect
	if cfg.Engine.NLP {
		if err := nlp.Attach(engine.Annotator); err != nil {
			return nil, err
		}
	}

	a := &app{lex: lex, engine: engine}
	var store session.Store
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr, DB: cfg.Store.RedisDB})
		a.closers = append(a.closers, client)
		store = session.NewRedisStore(client, cfg.Store.TTL)
	default:
		store = session.NewMemoryStore(cfg.Store.TTL)
	}

	a.service = session.NewService(
		engine,
		session.NewCache[*catalog.Catalog](cfg.Cache.Size, cfg.Cache.TTL),
		session.NewPool(cfg.Pool.Workers),
		store,
	)
	return a, nil
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// open builds the catalog at path into a fresh session.
func (a *app) open(ctx context.Context, path, typeName string) (string, *catalog.Catalog, error) {
	src, err := catalog.LoadFile(path, typeName)
	if err != nil {
		return "", nil, err
	}
	id := session.NewID()
	cat, err := a.service.Open(ctx, id, src)
	if err != nil {
		return "", nil, err
	}
	return id, cat, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res resolve.Result) {
	fprintf(w, "%s\n", res.String())
}

func printExplain(w io.Writer, a *app, utterance string, cat *catalog.Catalog, res resolve.Result) {
	fprintf(w, "  intent: %s\n", res.Intent.String())
	for i, c := range a.engine.Rank(utterance, cat, 0) {
		via := ""
		if c.Via != "" {
			via = " via " + c.Via
		}
		fprintf(w, "  %d. %-24s %.4f verb=%s object=%s particle=%t%s\n",
			i+1, c.Name, c.Score, c.VerbMatch, c.ObjectMatch, c.ParticleMatched, via)
	}
}
