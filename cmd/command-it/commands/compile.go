package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/appengine-ltd/command-it/internal/grammar"
	"github.com/appengine-ltd/command-it/internal/resolve"
)

var compileCmd = &cobra.Command{
	Use:   "compile utterance...",
	Short: "Resolve a command through the grammar and print its parse tree",
	Example: `  command-it compile -c turtle.py turn left 90 degrees
  command-it compile -c bank.go --json deposit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	addCatalogFlags(compileCmd)
	compileCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the analysis and result as JSON")
}

func runCompile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	id, _, err := a.open(ctx, catalogPath, catalogType)
	if err != nil {
		return err
	}
	res, analysis, err := a.service.Compile(ctx, id, joinArgs(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, struct {
			Analysis *grammar.Analysis `json:"analysis,omitempty"`
			Result   resolve.Result    `json:"result"`
		}{analysis, res})
	}
	printAnalysis(out, analysis)
	printResult(out, res)
	return nil
}

func printAnalysis(w io.Writer, an *grammar.Analysis) {
	if an == nil {
		return
	}
	if an.Err != nil {
		fprintf(w, "parse: %v\n", an.Err)
		return
	}
	if an.Tree != nil {
		fprintf(w, "tree:      %s\n", an.Tree)
	}
	fprintf(w, "structure: %s %v\n", an.Structure, an.Symbols)
	fprintf(w, "intent:    %s\n", an.Intent.String())
}
