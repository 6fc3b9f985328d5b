package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/config"
	"github.com/swotlab/swotlab/internal/logging"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	dataDir string
	backend string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "swotlab",
		Short: "swotlab - keyword SWOT analyses with a built-in A/B test",
		Long: `swotlab turns competitor descriptions into SWOT analyses and runs an
A/B test on how the results are presented.

Running without a subcommand starts the server (same as 'swotlab serve').`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, 0)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default $SWOT_DATA_DIR or ./data)")
	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "storage backend: json or sqlite (default $SWOT_BACKEND or json)")

	cmd.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newUserCmd(a),
		newListCmd(a),
		newMetricsCmd(a),
		newExportCmd(a),
		newStatusCmd(a),
	)
	return cmd
}

// load reads configuration and lets flags override it.
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.backend != "" {
		if a.backend != "json" && a.backend != "sqlite" {
			return fmt.Errorf("invalid backend %q: must be 'json' or 'sqlite'", a.backend)
		}
		cfg.Backend = a.backend
	}

	a.cfg = cfg
	a.logger = logging.New(os.Stderr, cfg.LogLevel, cfg.Development())
	return nil
}
