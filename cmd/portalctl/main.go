// Command portalctl runs administrative tasks against the portal's document store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prperemyshlev/wellness-portal/internal/app"
	"github.com/prperemyshlev/wellness-portal/internal/config"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Wellness portal administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("read %s: %w", envFile, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration")

	cmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		assignCmd(),
		purgeTokensCmd(),
	)

	return cmd
}

// session is an opened store plus the configuration it was opened with
type session struct {
	cfg   *config.Config
	infra app.Infrastructure
	repos *repository.Repositories
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	infra, err := app.NewInfrastructure(ctx, *cfg)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:   cfg,
		infra: infra,
		repos: repository.NewRepositories(infra.Store()),
	}, nil
}

func (s *session) Close(ctx context.Context) error {
	return s.infra.Shutdown(ctx)
}
