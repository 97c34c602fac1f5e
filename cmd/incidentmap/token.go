package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/incidentmap/internal/config"
	"github.com/jengzang/incidentmap/internal/middleware"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}
	cmd.Flags().StringVar(&tokenSubject, "subject", "analyst", "Token subject")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("no jwt secret configured: set JWT_SECRET or server.jwt_secret")
	}

	token, err := middleware.IssueToken(cfg.Server.JWTSecret, tokenSubject, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
