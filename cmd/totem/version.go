package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/totem"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Totem",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Totem %s\n", strings.TrimSpace(totem.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
