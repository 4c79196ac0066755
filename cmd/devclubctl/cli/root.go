package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/database"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
)

var envFile string

// Execute builds the command tree and runs it.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devclubctl",
		Short: "Operate the DevClub backend",
		Long: `devclubctl applies database migrations, seeds administrators and
reference data, and hashes passwords for manual fixes.

Configuration is read from DEVCLUB_* environment variables and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedAdminCmd())
	cmd.AddCommand(newSeedReferenceCmd())
	cmd.AddCommand(newHashPasswordCmd())

	return cmd
}

// runtime holds what every database command needs.
type runtime struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func openRuntime(ctx context.Context) (*runtime, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &runtime{cfg: cfg, logger: log, pool: pool}, nil
}

func (r *runtime) Close() {
	r.pool.Close()
	_ = r.logger.Sync()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			applied, err := database.Migrate(cmd.Context(), rt.pool, rt.logger)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
			}
			return nil
		},
	}
}
