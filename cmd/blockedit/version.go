package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/blockedit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of blockedit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blockedit version %s\n", strings.TrimSpace(blockedit.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
