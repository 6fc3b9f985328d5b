package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/swotlab/swotlab/internal/analysis"
	"github.com/swotlab/swotlab/internal/swot"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		owner  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored analyses",
		Long: `Export stored analyses in CSV, JSON or YAML format.

Examples:
  swotlab export --format csv > analyses.csv
  swotlab export --format json --owner ana@example.com > ana.json
  swotlab export --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" && format != "yaml" {
				return fmt.Errorf("invalid format: must be 'csv', 'json' or 'yaml'")
			}

			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				list, err := selectAnalyses(svc, owner)
				if err != nil {
					return err
				}
				records := toExportRecords(list, ownerEmails(svc))

				out := cmd.OutOrStdout()
				switch format {
				case "csv":
					return exportCSV(out, records)
				case "yaml":
					return exportYAML(out, records)
				default:
					return exportJSON(out, records)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format (csv, json or yaml)")
	cmd.Flags().StringVar(&owner, "owner", "", "only analyses owned by this email")
	return cmd
}

type exportFile struct {
	Analyses []exportRecord `json:"analyses" yaml:"analyses"`
}

type exportRecord struct {
	ID        string        `json:"id" yaml:"id"`
	Owner     string        `json:"owner" yaml:"owner"`
	Variant   string        `json:"variant" yaml:"variant"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Results   []swot.Result `json:"results" yaml:"results"`
}

func toExportRecords(list []analysis.Analysis, emails map[string]string) []exportRecord {
	records := make([]exportRecord, len(list))
	for i, a := range list {
		owner := emails[a.OwnerID]
		if owner == "" {
			owner = a.OwnerID
		}
		records[i] = exportRecord{
			ID:        a.ID,
			Owner:     owner,
			Variant:   string(a.Variant),
			Timestamp: a.Timestamp,
			Results:   a.Results,
		}
	}
	return records
}

// exportCSV writes one row per competitor result.
func exportCSV(out io.Writer, records []exportRecord) error {
	w := csv.NewWriter(out)

	// Write header
	if err := w.Write([]string{"analysis_id", "owner", "variant", "timestamp", "competitor", "strengths", "weaknesses", "opportunities", "threats"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write rows
	for _, r := range records {
		for _, res := range r.Results {
			row := []string{
				r.ID,
				r.Owner,
				r.Variant,
				r.Timestamp.Format(time.RFC3339),
				res.Name,
				strings.Join(res.SWOT.Strengths, " | "),
				strings.Join(res.SWOT.Weaknesses, " | "),
				strings.Join(res.SWOT.Opportunities, " | "),
				strings.Join(res.SWOT.Threats, " | "),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(out io.Writer, records []exportRecord) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportFile{Analyses: records})
}

func exportYAML(out io.Writer, records []exportRecord) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(exportFile{Analyses: records}); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}
