package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/railzwaylabs/catalogadmin/internal/catalog"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/interact"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/railzwaylabs/catalogadmin/internal/migration"
	"github.com/railzwaylabs/catalogadmin/internal/observability"
	"github.com/railzwaylabs/catalogadmin/internal/server"
	"github.com/railzwaylabs/catalogadmin/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogadmin",
		Short:         "Product catalog admin with offline cache",
		Version:       readVersionFromEnv(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newListCmd(),
		newReloadCmd(),
		newAddCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newMigrateCmd(),
		newServeCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the sql cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.ErrOrStderr())
		},
	}
}

func runMigrate(errOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Cache.Backend != config.CacheBackendSQL {
		fmt.Fprintf(errOut, "cache.backend is %q, nothing to migrate\n", cfg.Cache.Backend)
		return nil
	}

	app := fx.New(
		config.Module,
		observability.Module,
		fx.WithLogger(observability.FxLogger),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.WithLogger(observability.FxLogger),
		fx.Provide(
			func(log *zap.Logger) domain.Notifier { return interact.NewContextNotifier(log) },
			func() domain.Confirmer { return interact.ContextConfirmer{} },
		),
		catalog.Module,
		server.Module,
	)
	app.Run()
}

// session is what a one-shot CLI command gets to work with.
type session struct {
	cfg config.Config
	svc domain.Service
	out io.Writer
}

// runCatalog starts the engine without the HTTP surface, runs fn, and shuts everything down.
func runCatalog(cmd *cobra.Command, confirm domain.Confirmer, fn func(ctx context.Context, s session) error) error {
	out := cmd.OutOrStdout()
	var s session
	app := fx.New(
		config.Module,
		observability.Module,
		fx.WithLogger(observability.FxLogger),
		fx.Provide(
			func() domain.Notifier { return interact.ConsoleNotifier{Out: out} },
			func() domain.Confirmer { return confirm },
		),
		catalog.Module,
		fx.Populate(&s.cfg, &s.svc),
	)
	s.out = out

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(cmd.Context(), s)
}

func consoleConfirmer(cmd *cobra.Command, assumeYes bool) domain.Confirmer {
	return interact.ConsoleConfirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), AssumeYes: assumeYes}
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
