package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/store"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage backend and collection sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "BACKEND: %s\n", a.cfg.Backend)
				fmt.Fprintf(out, "DATA DIR: %s\n", a.cfg.DataDir)
				fmt.Fprintf(out, "USERS: %d\n", len(svc.accounts.Users()))
				fmt.Fprintf(out, "ANALYSES: %d\n", svc.analyses.Count())
				fmt.Fprintln(out)

				lister, ok := svc.store.(store.Lister)
				if !ok {
					return nil
				}
				infos, err := lister.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					fmt.Fprintln(out, "Nothing stored yet.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "COLLECTION\tSIZE\tUPDATED")
				for _, info := range infos {
					fmt.Fprintf(w, "%s\t%s B\t%s\n",
						info.Name,
						formatNumber(int64(info.SizeBytes)),
						info.UpdatedAt.Format("2006-01-02 15:04:05"),
					)
				}
				return w.Flush()
			})
		},
	}
}
