// Package ctl implements motekctl, the operator tool for the Motek auth
// server: applying migrations, sweeping dead refresh tokens, revoking a
// user's sessions and producing password hashes.
package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/motek/internal/common"
	"github.com/dmitrijs2005/motek/internal/logging"
	"github.com/dmitrijs2005/motek/internal/server/auth"
	"github.com/dmitrijs2005/motek/internal/server/config"
	"github.com/dmitrijs2005/motek/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/motek/internal/server/services"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrUsage is returned for an unknown command or missing arguments.
var ErrUsage = errors.New("usage error")

const usage = `usage: motekctl <command> [args] [flags]

commands:
  migrate                 apply database migrations
  sweep                   delete expired and revoked refresh tokens
  revoke-user <email>     revoke every refresh token of a user
  hash-password           read a password without echo and print its bcrypt hash
  help                    show this message

flags are the server's: -c config.json, -d dsn, -k driver, -b bcrypt cost, -e env`

type App struct {
	config *config.Config
	logger logging.Logger
	out    io.Writer
	open   func(ctx context.Context, driver, dsn string) (repomanager.RepositoryManager, error)
}

func NewApp(c *config.Config, logger logging.Logger, out io.Writer) *App {
	return &App{
		config: c,
		logger: logger.With("module", "motekctl"),
		out:    out,
		open:   repomanager.Open,
	}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.migrate(ctx)
	case "sweep":
		return a.sweep(ctx)
	case "revoke-user":
		if len(rest) == 0 || strings.HasPrefix(rest[0], "-") {
			return fmt.Errorf("%w: revoke-user needs an email", ErrUsage)
		}
		return a.revokeUser(ctx, rest[0])
	case "hash-password":
		return a.hashPassword()
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) withStorage(ctx context.Context, fn func(m repomanager.RepositoryManager) error) error {
	m, err := a.open(ctx, a.config.StorageDriver, a.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.logger.Warn(ctx, "close storage", logging.Err(err))
		}
	}()
	return fn(m)
}

func (a *App) userService(m repomanager.RepositoryManager) *services.UserService {
	codec := auth.NewCodec([]byte(a.config.SecretKey), a.config.AccessTokenValidityDuration)
	return services.NewUserService(m, codec, a.config, a.logger)
}

func (a *App) migrate(ctx context.Context) error {
	return a.withStorage(ctx, func(m repomanager.RepositoryManager) error {
		if err := m.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migrations error: %w", err)
		}
		fmt.Fprintln(a.out, "migrations applied")
		return nil
	})
}

func (a *App) sweep(ctx context.Context) error {
	return a.withStorage(ctx, func(m repomanager.RepositoryManager) error {
		n, err := a.userService(m).SweepExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted %d refresh tokens\n", n)
		return nil
	})
}

func (a *App) revokeUser(ctx context.Context, email string) error {
	return a.withStorage(ctx, func(m repomanager.RepositoryManager) error {
		n, err := a.userService(m).RevokeAllForEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("user %s not found", email)
			}
			return err
		}
		fmt.Fprintf(a.out, "revoked %d refresh tokens for %s\n", n, email)
		return nil
	})
}

func (a *App) hashPassword() error {
	fmt.Fprint(a.out, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer clear(pw)

	if err := services.ValidatePassword(string(pw)); err != nil {
		return err
	}

	hash, err := auth.HashPassword(string(pw), a.config.BcryptCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, hash)
	return nil
}
