package main

import (
	"fmt"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/core"
	"github.com/joeydtaylor/vblocks/pkg/middleware/auth"
	"github.com/spf13/cobra"
)

var (
	tokenManifest string
	tokenSubject  string
	tokenRole     string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a JWT for the editor (append ?token=... to the app URL)",
	RunE:  runToken,
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenManifest, "manifest", "vblocks.toml", "manifest providing [auth] (optional; VBLOCKS_JWT_SECRET also works)")
	f.StringVar(&tokenSubject, "subject", "", "token subject (required)")
	f.StringVar(&tokenRole, "role", "user", "role claim")
	f.DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	man, err := core.LoadConfigOrDefault(tokenManifest)
	if err != nil {
		return err
	}
	if tokenTTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	tok, err := auth.New(man.Auth, false).Issue(tokenSubject, tokenRole, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
