package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"bookcatalog/internal/account"
	"bookcatalog/internal/apperr"
	"bookcatalog/internal/auth"
	"bookcatalog/internal/catalog"
	"bookcatalog/internal/entity"
	"bookcatalog/internal/notify"
	"bookcatalog/internal/platform/config"
	"bookcatalog/internal/platform/logger"
	"bookcatalog/internal/store"
)

type seedBook struct {
	title     string
	published int
	author    string
	genres    []string
}

var books = []seedBook{
	{"Clean Code", 2008, "Robert Martin", []string{"refactoring"}},
	{"Agile software development", 2002, "Robert Martin", []string{"agile", "patterns", "design"}},
	{"Refactoring, edition 2", 2018, "Martin Fowler", []string{"refactoring"}},
	{"Refactoring to patterns", 2008, "Joshua Kerievsky", []string{"refactoring", "patterns"}},
	{"Practical Object-Oriented Design, An Agile Primer Using Ruby", 2012, "Sandi Metz", []string{"refactoring", "design"}},
	{"Crime and punishment", 1866, "Fyodor Dostoevsky", []string{"classic", "crime"}},
	{"Demons", 1872, "Fyodor Dostoevsky", []string{"classic", "revolution"}},
}

var born = map[string]int{
	"Robert Martin":     1952,
	"Martin Fowler":     1963,
	"Fyodor Dostoevsky": 1821,
}

type seedOptions struct {
	username   string
	dsn        string
	printToken bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		logrus.WithError(err).Error("seed failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Load the sample catalog into the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.dsn != "" {
				cfg.DSN = opts.dsn
			}
			return run(cmd, cfg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.username, "user", "seed", "username that owns the seeded books")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "database DSN (default from DB_DSN)")
	cmd.Flags().BoolVar(&opts.printToken, "print-token", false, "print a bearer token for the seed user")
	return cmd
}

func run(cmd *cobra.Command, cfg config.Config, opts *seedOptions) error {
	log := logger.New(cfg.LogLevel)
	ctx := cmd.Context()

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	s, err := newSeeder(log, store.NewCatalogPG(pool, cfg.DBTimeout), store.NewUserPG(pool, cfg.DBTimeout), cfg)
	if err != nil {
		return err
	}
	if err := s.seed(ctx, opts.username); err != nil {
		return err
	}
	if opts.printToken {
		token, err := s.token(ctx, opts.username)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
	}
	return nil
}

// seeder goes through the services so seeded rows pass the same validation
// and author resolution as API writes.
type seeder struct {
	log         logrus.FieldLogger
	users       account.Repository
	accounts    *account.Service
	catalog     *catalog.Service
	loginSecret string
}

func newSeeder(log logrus.FieldLogger, catalogRepo catalog.Repository, users account.Repository, cfg config.Config) (*seeder, error) {
	creds, err := account.NewSharedSecretVerifier(cfg.LoginSecret, bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	return &seeder{
		log:         log,
		users:       users,
		accounts:    account.NewService(users, creds, auth.NewTokenService(cfg.JWTSecret), log),
		catalog:     catalog.NewService(catalogRepo, notify.NewBus[entity.Book](), log),
		loginSecret: cfg.LoginSecret,
	}, nil
}

// seed is idempotent: rows that already exist are skipped.
func (s *seeder) seed(ctx context.Context, username string) error {
	owner, err := s.accounts.CreateUser(ctx, username, "refactoring")
	if errors.Is(err, apperr.ErrUserValidation) {
		owner, err = s.users.GetUserByUsername(ctx, username)
	}
	if err != nil {
		return err
	}

	added := 0
	for _, b := range books {
		_, err := s.catalog.AddBook(ctx, catalog.NewBook{
			Title:         b.title,
			PublishedYear: b.published,
			Author:        b.author,
			Genres:        b.genres,
		}, &owner)
		if errors.Is(err, apperr.ErrBookValidation) {
			s.log.WithField("title", b.title).Debug("book exists, skipping")
			continue
		}
		if err != nil {
			return err
		}
		added++
	}

	for name, year := range born {
		if _, err := s.catalog.EditAuthor(ctx, name, year, &owner); err != nil {
			return err
		}
	}

	s.log.WithFields(logrus.Fields{"books": added, "user": owner.Username}).Info("seed complete")
	return nil
}

// token logs the seed user in with the shared login secret.
func (s *seeder) token(ctx context.Context, username string) (string, error) {
	return s.accounts.Login(ctx, username, s.loginSecret)
}
