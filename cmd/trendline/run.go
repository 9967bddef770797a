package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/trendline"
	"github.com/aretw0/trendline/internal/presentation/tui"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize trending repositories",
	Long: `Fetches recently created repositories, analyzes each one with the configured
model and prints the markdown report. The report is also saved to the configured store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		headless, _ := cmd.Flags().GetBool("headless")

		overrides := domain.Config{}
		if cmd.Flags().Changed("item-count") {
			n, _ := cmd.Flags().GetInt("item-count")
			overrides["item_count"] = n
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.close()

		runner := trendline.NewRunner()
		runner.Headless = headless
		if !headless {
			tui.PrintBanner(os.Stdout)
			runner.Renderer = tui.RendererFor(os.Stdout)
		}

		engine, err := newEngine(ctx, b, overrides, trendline.WithLifecycleHooks(runner.ProgressHooks()))
		if err != nil {
			return err
		}

		report, err := runner.Run(ctx, engine, query)
		if err != nil {
			if !headless {
				fmt.Fprintln(os.Stderr, tui.Status(os.Stderr, false, "Run failed"))
			}
			return err
		}
		if !headless {
			fmt.Fprintln(os.Stderr, tui.Status(os.Stderr, true, "Report saved as "+report.RunID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("query", "q", "", "Label recorded with the report")
	runCmd.Flags().IntP("item-count", "n", 0, "Number of repositories to analyze (overrides the configuration)")
	runCmd.Flags().Bool("headless", false, "Print only the plain markdown report")
}
