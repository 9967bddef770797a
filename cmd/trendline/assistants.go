package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/trendline/pkg/adapters/langgraph"
	"github.com/spf13/cobra"
)

var assistantsCmd = &cobra.Command{
	Use:   "assistants",
	Short: "Query the assistants of the configured LangGraph server",
}

var assistantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployed assistants",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newAssistants().ListAssistants(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ASSISTANT ID\tGRAPH\tNAME\tVERSION")
		for _, a := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", a.AssistantID, a.GraphID, a.Name, a.Version)
		}
		return w.Flush()
	},
}

var assistantsFindCmd = &cobra.Command{
	Use:   "find [assistant-id]",
	Short: "Show one assistant; without an ID the first available one is selected",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		a, err := newAssistants().FindAssistant(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(a)
	},
}

var assistantsRunCmd = &cobra.Command{
	Use:   "run <assistant-id>",
	Short: "Run an assistant without a thread and print its final state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("input")

		var input map[string]any
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return fmt.Errorf("invalid --input: %w", err)
		}

		out, err := newAssistants().RunStateless(cmd.Context(), langgraph.RunRequest{
			AssistantID: args[0],
			Input:       input,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(assistantsCmd)
	assistantsCmd.AddCommand(assistantsListCmd, assistantsFindCmd, assistantsRunCmd)
	assistantsRunCmd.Flags().String("input", "{}", "JSON object passed as the run input")
}
