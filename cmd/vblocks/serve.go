package main

import (
	"fmt"
	"os"

	"github.com/joeydtaylor/vblocks/pkg/registry"
	"github.com/joeydtaylor/vblocks/pkg/serverfx"
	"github.com/spf13/cobra"
)

var (
	serveManifest string
	serveListen   string
	serveDemo     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Download the web app and serve it with the inference API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveManifest, "manifest", "", "manifest path (default $VBLOCKS_MANIFEST or vblocks.toml)")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address, overrides the manifest")
	serveCmd.Flags().BoolVar(&serveDemo, "demo", false, "register the built-in demo functions")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveManifest != "" {
		if err := os.Setenv("VBLOCKS_MANIFEST", serveManifest); err != nil {
			return err
		}
	}
	if serveListen != "" {
		if err := os.Setenv("SERVER_LISTEN_ADDRESS", serveListen); err != nil {
			return err
		}
	}
	reg := registry.New()
	if serveDemo {
		if err := registerDemo(reg); err != nil {
			return err
		}
	}
	if reg.Len() == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no inference functions registered (try --demo)")
	}
	app := serverfx.New(reg, nil)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
