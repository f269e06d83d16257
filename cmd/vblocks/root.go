package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "vblocks",
	Short:        "Bridge Go inference functions to the Visual Blocks editor",
	SilenceUsage: true,
	Long: `vblocks hosts the Visual Blocks web app next to a small inference API so
custom nodes in the editor can call functions registered in Go.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
