package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/core"
	"github.com/joeydtaylor/vblocks/pkg/middleware/logger"
	"github.com/joeydtaylor/vblocks/pkg/pipelineindex"
	"github.com/spf13/cobra"
)

var (
	indexManifest string
	indexRoot     string
	indexOut      string
	indexBaseURL  string
	indexWatch    bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build pipelines_index.json from a directory of example pipelines",
	RunE:  runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.StringVar(&indexManifest, "manifest", "vblocks.toml", "manifest providing [index] defaults (optional)")
	f.StringVar(&indexRoot, "root", "", "pipelines directory")
	f.StringVar(&indexOut, "out", "", "output file (default <root>/pipelines_index.json)")
	f.StringVar(&indexBaseURL, "base-url", "", "URL prefix for file links")
	f.BoolVar(&indexWatch, "watch", false, "keep running and rebuild on changes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	man, err := core.LoadConfigOrDefault(indexManifest)
	if err != nil {
		return err
	}
	ic := man.Index
	if indexRoot != "" {
		ic.Root = indexRoot
		if indexOut == "" {
			ic.Output = filepath.Join(indexRoot, filepath.Base(ic.Output))
		}
	}
	if indexOut != "" {
		ic.Output = indexOut
	}
	if indexBaseURL != "" {
		ic.BaseURL = indexBaseURL
	}

	log := logger.NewLog(man.Log.Dir, "index.log")
	defer func() { _ = log.Sync() }()

	b := pipelineindex.NewBuilder(ic.BaseURL, log)
	b.Exclude(filepath.Base(ic.Output))

	if !indexWatch {
		idx, err := b.Rebuild(ic.Root, ic.Output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pipelines to %s\n", len(idx), ic.Output)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	w := pipelineindex.NewWatcher(b, ic.Root, ic.Output, time.Duration(ic.DebounceMS)*time.Millisecond)
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", ic.Root)
	return w.Run(ctx)
}
