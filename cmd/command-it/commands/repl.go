package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/logging"
	"github.com/appengine-ltd/command-it/internal/resolve"
)

var (
	replWatch   bool
	replGrammar bool
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Resolve commands interactively",
	Long: `Read commands from standard input one line at a time. When a command
is missing a required argument the question is printed and the next line
is read as the answer; "never mind" drops the question.

Lines starting with ':' are repl commands: :grammar toggles the grammar
compiler, :explain toggles candidate output, :quit exits.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	addCatalogFlags(replCmd)
	replCmd.Flags().BoolVar(&replWatch, "watch", false, "Reload the catalog when its source file changes")
	replCmd.Flags().BoolVar(&replGrammar, "grammar", false, "Resolve through the grammar compiler")
	replCmd.Flags().BoolVar(&explain, "explain", false, "Show the extracted intent and the top candidates")
}

func runRepl(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	id, cat, err := a.open(ctx, catalogPath, catalogType)
	if err != nil {
		return err
	}
	defer func() { _ = a.service.Close(context.WithoutCancel(ctx), id) }()
	out := cmd.OutOrStdout()
	fprintf(out, "%s: %d operations. :quit to exit.\n", cat.Target(), cat.Len())

	var reloads *reloadQueue
	if replWatch {
		reloads = newReloadQueue(1)
		w, err := watchFile(ctx, catalogPath, reloads)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	lines := readLines(ctx, cmd.InOrStdin())
	r := &repl{app: a, id: id, cat: cat, out: out, grammar: replGrammar, explain: explain}
	r.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-reloads.C():
			r.reload(ctx, path)
			r.prompt()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			// a reload that raced the line applies first
			if path, ok := reloads.Dequeue(); ok {
				r.reload(ctx, path)
			}
			if quit := r.handle(ctx, line); quit {
				return nil
			}
			r.prompt()
		}
	}
}

type repl struct {
	app     *app
	id      string
	cat     *catalog.Catalog
	out     io.Writer
	grammar bool
	explain bool
}

func (r *repl) prompt() {
	fprintf(r.out, "> ")
}

// handle processes one input line and reports whether the repl should exit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case ":quit", ":q", ":exit":
		return true
	case ":grammar":
		r.grammar = !r.grammar
		fprintf(r.out, "grammar compiler %s\n", onOff(r.grammar))
		return false
	case ":explain":
		r.explain = !r.explain
		fprintf(r.out, "explain %s\n", onOff(r.explain))
		return false
	}

	var (
		res resolve.Result
		err error
	)
	if r.grammar {
		res, _, err = r.app.service.Compile(ctx, r.id, line)
	} else {
		res, err = r.app.service.Resolve(ctx, r.id, line)
	}
	if err != nil {
		fprintf(r.out, "error: %v\n", err)
		return false
	}
	switch res.Kind {
	case resolve.Matched:
		fprintf(r.out, "%s\n", res.Executable)
	case resolve.NeedsClarification:
		fprintf(r.out, "%s\n", res.Question)
	default:
		printResult(r.out, res)
	}
	if r.explain {
		printExplain(r.out, r.app, line, r.cat, res)
	}
	return false
}

func (r *repl) reload(ctx context.Context, path string) {
	src, err := catalog.LoadFile(path, catalogType)
	if err == nil {
		var cat *catalog.Catalog
		if cat, err = r.app.service.Reload(ctx, r.id, src); err == nil {
			r.cat = cat
			fprintf(r.out, "\nreloaded %s: %d operations\n", filepath.Base(path), cat.Len())
			return
		}
	}
	// keep the previous catalog on a broken edit
	fprintf(r.out, "\nreload failed: %v\n", err)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// watchFile watches the directory holding path, since editors often replace
// files by rename, and queues a reload for writes to path.
func watchFile(ctx context.Context, path string, q *reloadQueue) (*fsnotify.Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					q.Enqueue(abs)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn().Err(err).Str("path", abs).Msg("catalog watcher error")
			}
		}
	}()
	return w, nil
}
