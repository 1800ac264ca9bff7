package commands

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showPhrases bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print a catalog as a manifest",
	Long: `Build the catalog from a source file and print it as a YAML manifest
that 'command-it --catalog' reads back. With --phrases, print the derived
verb, object and particle of every name and alias instead.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	addCatalogFlags(catalogCmd)
	catalogCmd.Flags().BoolVar(&showPhrases, "phrases", false, "Print derived phrases instead of the manifest")
	catalogCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the manifest as JSON")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	_, cat, err := a.open(cmd.Context(), catalogPath, catalogType)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if showPhrases {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fprintf(tw, "NAME\tPHRASE\tVERB\tOBJECT\tPARTICLE\tSYNONYMS\n")
		for _, e := range cat.Entries() {
			for _, ph := range e.Phrases {
				fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Name, ph.Name, ph.Verb, dash(ph.Object), dash(ph.Particle), strings.Join(ph.VerbSynonyms, ","))
			}
		}
		return tw.Flush()
	}

	m := cat.Manifest()
	if jsonOutput {
		return writeJSON(out, m)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
