package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dsn string
	dir string
}

func main() {
	loadEnvFiles()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		logrus.WithError(err).Error("migrate failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the catalog database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", databaseDSN(), "database DSN (env DB_DSN)")
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", migrationsDir(), "migrations directory (env MIGRATIONS_DIR)")

	cmd.AddCommand(
		newDBCommand(opts, "up", "Apply all pending migrations", func(db *sql.DB, dir string) error {
			return goose.Up(db, dir)
		}),
		newDBCommand(opts, "down", "Roll back the latest migration", func(db *sql.DB, dir string) error {
			return goose.Down(db, dir)
		}),
		newDBCommand(opts, "status", "Show migration status", func(db *sql.DB, dir string) error {
			return goose.Status(db, dir)
		}),
		newCreateCommand(opts),
	)
	return cmd
}

func newDBCommand(opts *rootOptions, use, short string, run func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := pgxpool.New(cmd.Context(), opts.dsn)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()

			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			if err := run(db, opts.dir); err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			logrus.WithField("dir", opts.dir).Infof("%s completed", use)
			return nil
		},
	}
}

func newCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := goose.Create(nil, opts.dir, args[0], "sql"); err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			return nil
		},
	}
}
