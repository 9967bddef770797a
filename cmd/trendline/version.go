package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/trendline"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of trendline",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trendline version %s\n", strings.TrimSpace(trendline.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
