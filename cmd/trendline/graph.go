package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/trendline/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline graph",
	Long:  `Outputs a Mermaid diagram (graph TD) or the JSON description of the compiled step graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.close()

		engine, err := newEngine(cmd.Context(), b, nil)
		if err != nil {
			return err
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(engine.Describe(), nil))
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(engine.Describe())
		default:
			return fmt.Errorf("unknown format %q: supported mermaid, json", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
}
