package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventalbum/config"
	"eventalbum/internal/adapters/auth"
)

func newDevTokenCmd() *cobra.Command {
	var (
		organizerID string
		email       string
		ttl         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Print an organizer bearer token signed with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Environment == "production" {
				return errors.New("dev-token is disabled in production")
			}
			if cfg.AuthJWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			token, err := auth.NewJWTIssuer(cfg.AuthJWTSecret).Issue(organizerID, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&organizerID, "organizer", "", "organizer id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "organizer email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("organizer")
	return cmd
}
