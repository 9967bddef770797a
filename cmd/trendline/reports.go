package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aretw0/trendline/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.close()

		ids, err := b.store.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN ID\tCREATED\tQUERY\tREPOSITORIES")
		for _, id := range ids {
			r, err := b.store.Load(cmd.Context(), id)
			if err != nil {
				logger.Warn("skipping unreadable report", "run_id", id, "err", err)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.RunID, r.CreatedAt.Format(time.RFC3339), r.Query, len(r.Repositories))
		}
		return w.Flush()
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.close()

		r, err := b.store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		content := r.Content
		if render := tui.RendererFor(os.Stdout); render != nil {
			if content, err = render(r.Content); err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
		}
		fmt.Println(content)
		return nil
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Remove stored reports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.close()

		for _, id := range args {
			if err := b.store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete report %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsDeleteCmd)
}
