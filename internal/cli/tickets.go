package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/spf13/cobra"
)

func ticketsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List an owner's reports, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			history, _ := cmd.Flags().GetBool("history")
			skip, _ := cmd.Flags().GetInt("skip")

			var (
				page model.Page
				err  error
			)
			if history {
				page, err = env.Service.History(cmd.Context(), owner, skip)
			} else {
				page, err = env.Service.Recent(cmd.Context(), owner)
			}
			if err != nil {
				return fmt.Errorf("failed to list tickets: %w", err)
			}

			if len(page.Items) == 0 {
				fmt.Fprintln(env.Out, "No reports found.")
				return nil
			}
			w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "UUID\tSTATUS\tPRIORITY\tPOTHOLES\tCREATED\tADDRESS")
			fmt.Fprintln(w, "----\t------\t--------\t--------\t-------\t-------")
			for _, t := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					t.UUID, t.Status, colorPriority(t.Priority), t.Aggregate.TotalPotholes,
					formatTime(&t.CreatedAt), t.Address)
			}
			_ = w.Flush()
			fmt.Fprintf(env.Out, "\nShowing %d of %d\n", len(page.Items), page.Total)
			return nil
		},
	}
	cmd.Flags().String("owner", "", "Owner id (required)")
	cmd.Flags().Bool("history", false, "Show the full history page instead of the recent view")
	cmd.Flags().Int("skip", 0, "Number of reports to skip in the history view")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
