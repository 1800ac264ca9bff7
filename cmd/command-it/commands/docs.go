package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appengine-ltd/command-it/internal/catalog"
)

var (
	docsCatalogs []string
	docsOut      string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Write a Markdown reference for one or more catalogs",
	Example: `  command-it docs -c turtle.py -c home.yaml --out docs/reference/catalogs`,
	Args: cobra.NoArgs,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().StringArrayVarP(&docsCatalogs, "catalog", "c", nil, "Catalog source (repeatable)")
	docsCmd.Flags().StringVar(&catalogType, "type", "", "Class or type to read from source files")
	docsCmd.Flags().StringVar(&docsOut, "out", filepath.Join("docs", "reference", "catalogs"), "Output directory")
	_ = docsCmd.MarkFlagRequired("catalog")
}

type docFile struct {
	Name    string
	Title   string
	Content string
}

func runDocs(cmd *cobra.Command, _ []string) error {
	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := os.MkdirAll(docsOut, 0o755); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var files []docFile
	for _, path := range docsCatalogs {
		_, cat, err := a.open(cmd.Context(), path, catalogType)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		files = append(files, catalogDoc(cat, path))
	}
	for _, f := range files {
		path := filepath.Join(docsOut, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return err
		}
		fprintf(out, "wrote %s\n", path)
	}

	indexPath := filepath.Join(docsOut, "README.md")
	if err := os.WriteFile(indexPath, []byte(catalogIndex(files)), 0o644); err != nil {
		return err
	}
	fprintf(out, "wrote %s\n", indexPath)
	return nil
}

func catalogIndex(files []docFile) string {
	var b strings.Builder
	b.WriteString("# Catalogs\n\n")
	b.WriteString("Generated with `command-it docs`.\n\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- [%s](./%s)\n", f.Title, f.Name))
	}
	return b.String()
}

func catalogDoc(cat *catalog.Catalog, source string) docFile {
	title := cat.Target()
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	b.WriteString(fmt.Sprintf("Source: `%s`. %d operations.\n\n", filepath.Base(source), cat.Len()))
	b.WriteString("| Operation | Parameters | Aliases | Phrase | Summary |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range cat.Entries() {
		params := make([]string, 0, len(e.Params))
		for _, p := range e.Params {
			s := p.Name + ": " + string(p.Type)
			if !p.Required {
				s += " = " + p.Default
			}
			params = append(params, s)
		}
		phrase := e.Verb()
		if e.Object() != "" {
			phrase += " " + e.Object()
		}
		if e.Particle() != "" {
			phrase += " " + e.Particle()
		}
		b.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %s |\n",
			e.Name,
			mdJoin(params),
			mdJoin(e.Aliases),
			phrase,
			mdEscape(firstLine(e.Doc)),
		))
	}
	return docFile{Name: slug(title) + ".md", Title: title, Content: b.String()}
}

func mdJoin(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return mdEscape(strings.Join(items, ", "))
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "catalog"
	}
	return strings.Trim(b.String(), "-")
}
