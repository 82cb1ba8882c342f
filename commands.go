package main

import (
	"context"
	"fmt"
	"time"

	"auction-service/internal/config"
	"auction-service/internal/identity"
	"auction-service/internal/models"
	"auction-service/internal/repository"

	"github.com/spf13/cobra"
)

var (
	migrateDSN string

	tokenUser  string
	tokenAdmin bool
	tokenTTL   time.Duration

	rootCmd = &cobra.Command{
		Use:          "auction-service",
		Short:        "Timed auctions with concurrent bid admission",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe, // Defined in serve.go
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations to the Postgres store",
		RunE:  runMigrate,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with AUCTION_JWT_SECRET",
		RunE:  runToken,
	}
)

func init() {
	migrateCmd.Flags().StringVar(&migrateDSN, "dsn", "", "Postgres DSN (defaults to AUCTION_DATABASE_DSN)")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id to put in the token subject")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant admin privileges")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	var env struct {
		DSN string `env:"AUCTION_DATABASE_DSN"`
	}
	if err := config.ParseEnv(&env); err != nil {
		return err
	}
	dsn := migrateDSN
	if dsn == "" {
		dsn = env.DSN
	}
	if dsn == "" {
		return fmt.Errorf("migrate: no DSN, set --dsn or AUCTION_DATABASE_DSN")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	db, err := repository.OpenPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	var env struct {
		Secret string `env:"AUCTION_JWT_SECRET,required,notEmpty"`
		Issuer string `env:"AUCTION_JWT_ISSUER"`
	}
	if err := config.ParseEnv(&env); err != nil {
		return err
	}

	tok, err := identity.Sign([]byte(env.Secret), env.Issuer, models.Identity{UserID: tokenUser, IsAdmin: tokenAdmin}, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
