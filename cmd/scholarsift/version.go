package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the scholarsift version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scholarsift %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
