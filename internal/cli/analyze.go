package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/fetch"
	"github.com/swotlab/swotlab/internal/swot"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		name   string
		text   string
		file   string
		url    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a SWOT analysis locally",
		Long: `Run the keyword SWOT extraction on a single competitor description.
Nothing is stored and no A/B view is counted.

The description comes from --text, --file, --url or standard input.

Examples:
  swotlab analyze --name Acme --text "Acme is fast. Acme is expensive."
  swotlab analyze --name Acme --file acme.txt
  swotlab analyze --url https://acme.example
  cat acme.txt | swotlab analyze --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			description := text
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				description = string(data)
			case url != "":
				page, err := fetch.New(a.cfg.FetchTimeout).Fetch(cmd.Context(), url)
				if err != nil {
					return err
				}
				description = page.Description
				if name == "" {
					name = page.Title
				}
			case !cmd.Flags().Changed("text"):
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				description = string(data)
			}

			results := swot.Analyze([]swot.CompetitorInput{{Name: name, Description: description}})

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}
			for _, r := range results {
				printResult(out, r)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "competitor name (default page title or \"Competitor 1\")")
	cmd.Flags().StringVarP(&text, "text", "t", "", "description text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the description from a file")
	cmd.Flags().StringVar(&url, "url", "", "fetch the description from a web page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("text", "file", "url")

	return cmd
}

func printResult(w io.Writer, r swot.Result) {
	fmt.Fprintf(w, "COMPETITOR: %s\n", r.Name)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	printSection(w, "STRENGTHS", r.SWOT.Strengths)
	printSection(w, "WEAKNESSES", r.SWOT.Weaknesses)
	printSection(w, "OPPORTUNITIES", r.SWOT.Opportunities)
	printSection(w, "THREATS", r.SWOT.Threats)
}

func printSection(w io.Writer, title string, items []string) {
	fmt.Fprintln(w, title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	fmt.Fprintln(w)
}
