package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var explain bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [utterance...]",
	Short: "Resolve a command against a catalog",
	Long: `Resolve one utterance against the catalog and print the result.

With no arguments, every non-empty line of standard input is resolved
independently and the results are printed in input order.`,
	Example: `  command-it resolve -c turtle.py move forward fifty steps
  command-it resolve -c home.yaml --explain switch on the light
  printf 'pen up\nforward 50\n' | command-it resolve -c turtle.py --json`,
	RunE: runResolve,
}

func init() {
	addCatalogFlags(resolveCmd)
	resolveCmd.Flags().BoolVar(&explain, "explain", false, "Show the extracted intent and the top candidates")
	resolveCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	id, cat, err := a.open(ctx, catalogPath, catalogType)
	if err != nil {
		return err
	}

	utterances := []string{joinArgs(args)}
	if len(args) == 0 {
		utterances = utterances[:0]
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				utterances = append(utterances, line)
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read utterances: %w", err)
		}
	}
	if len(utterances) == 0 {
		return fmt.Errorf("nothing to resolve")
	}

	results, err := a.service.ResolveAll(ctx, id, utterances)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, results)
	}
	for i, res := range results {
		if len(utterances) > 1 {
			fprintf(out, "%s: ", utterances[i])
		}
		printResult(out, res)
		if explain {
			printExplain(out, a, utterances[i], cat, res)
		}
	}
	return nil
}
