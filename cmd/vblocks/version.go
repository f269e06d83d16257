package main

import (
	"fmt"
	"runtime"

	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vblocks version and the default web-app bundle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Version:    %s\n", version)
		fmt.Fprintf(out, "Commit:     %s\n", emptyAsNA(commit))
		fmt.Fprintf(out, "Bundle:     %s\n", manifest.DefaultBundleVersion)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
