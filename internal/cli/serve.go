package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/logging"
	"github.com/swotlab/swotlab/internal/server"
	"github.com/swotlab/swotlab/internal/telemetry"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the swotlab HTTP server.

The server provides:
  - SWOT generation API and stored analyses
  - Integration script at /swot.js and view/conversion endpoints
  - Dashboard for signed-in users
  - Health check and Prometheus metrics

Example:
  swotlab serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default $SWOT_PORT or 8080)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, port int) error {
	if port == 0 {
		port = a.cfg.Port
	}
	a.logger = logging.New(os.Stdout, a.cfg.LogLevel, a.cfg.Development())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel := telemetry.New()
	return a.withServices(ctx, tel, func(svc *services) error {
		if n := svc.accounts.PurgeExpired(ctx); n > 0 {
			a.logger.Info().Int("sessions", n).Msg("purged expired sessions")
		}

		srv := server.New(server.Deps{
			Accounts:  svc.accounts,
			Analyses:  svc.analyses,
			Metrics:   svc.metrics,
			Assigner:  svc.assigner,
			Telemetry: tel,
			Logger:    a.logger,
		}, server.Options{
			Port:          port,
			AuthRateRPS:   a.cfg.AuthRateRPS,
			AuthRateBurst: a.cfg.AuthRateBurst,
		})

		printStartupInstructions(cmd.ErrOrStderr(), port)
		return srv.Start(ctx)
	})
}

func printStartupInstructions(w io.Writer, port int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Server running at http://localhost:%d\n", port)
	fmt.Fprintf(w, "Dashboard: http://localhost:%d/dashboard (sign in with 'swotlab user login <email>')\n", port)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add the script to your site:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "   <script src=\"http://localhost:%d/swot.js\" defer></script>\n", port)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mark variant-specific markup and conversion buttons:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `   <section data-swot-variant-a hidden>cards</section>
   <section data-swot-variant-b hidden>table</section>
   <button data-swot-convert>Sign Up</button>`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  analyze          Run a SWOT analysis locally")
	fmt.Fprintln(w, "  user create      Create an account")
	fmt.Fprintln(w, "  list             List stored analyses")
	fmt.Fprintln(w, "  metrics          Show A/B counters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Press Ctrl+C to stop")
}
