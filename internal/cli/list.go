package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/analysis"
)

func newListCmd(a *app) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses",
		Long:  `List stored analyses, newest first, optionally for a single owner.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				list, err := selectAnalyses(svc, owner)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No analyses yet.")
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Signed-in users create them with POST /api/analyses.")
					return nil
				}

				emails := ownerEmails(svc)

				// Print table
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tOWNER\tVARIANT\tCOMPETITORS\tCREATED")
				for _, item := range list {
					names := make([]string, len(item.Results))
					for i, r := range item.Results {
						names[i] = r.Name
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						shortID(item.ID),
						emails[item.OwnerID],
						item.Variant,
						truncate(strings.Join(names, ", "), 40),
						item.Timestamp.Format("2006-01-02 15:04"),
					)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "only analyses owned by this email")
	return cmd
}

// selectAnalyses returns every analysis, or only owner's when set, newest first.
func selectAnalyses(svc *services, owner string) ([]analysis.Analysis, error) {
	if owner == "" {
		all := svc.analyses.All()
		sortNewestFirst(all)
		return all, nil
	}
	user, ok := svc.accounts.UserByEmail(owner)
	if !ok {
		return nil, fmt.Errorf("user '%s' not found", owner)
	}
	return svc.analyses.List(user.ID), nil
}

func ownerEmails(svc *services) map[string]string {
	users := svc.accounts.Users()
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Email
	}
	return out
}

func sortNewestFirst(list []analysis.Analysis) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.After(list[j].Timestamp) })
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
