package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/config"
	"github.com/prperemyshlev/wellness-portal/internal/seed"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
	"github.com/prperemyshlev/wellness-portal/migrations"
	"github.com/prperemyshlev/wellness-portal/pkg/database"
	"github.com/spf13/cobra"
)

const commandTimeout = 2 * time.Minute

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			pg, err := database.NewPostgres(ctx, cfg.Postgres.DSN(), database.PoolOptions{MaxOpenConns: 1})
			if err != nil {
				return err
			}
			defer pg.Close()

			version, err := database.Migrate(pg.DB, migrations.FS)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, providers, reminders, compliance records and health tips from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			hasher := utils.NewPasswordHasher(s.cfg.Password.Algorithm, s.cfg.Password.BCryptCost, utils.Argon2Params{
				Memory:      s.cfg.Password.Memory,
				Iterations:  s.cfg.Password.Iterations,
				Parallelism: s.cfg.Password.Parallelism,
			})

			result, err := seed.NewSeeder(s.repos, hasher).Apply(ctx, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"users created: %d, skipped: %d, assignments: %d, reminders: %d, compliance records: %d, health tips: %d, already present: %d\n",
				result.UsersCreated, result.UsersSkipped, result.Assignments, result.Reminders, result.Compliance, result.HealthTips, result.Existing)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "Seed file")
	return cmd
}

func assignCmd() *cobra.Command {
	var providerEmail, patientEmail string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a patient to a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := seed.AssignByEmail(ctx, s.repos, providerEmail, patientEmail); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "assigned %s to %s\n", patientEmail, providerEmail)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerEmail, "provider", "", "Provider account email")
	cmd.Flags().StringVar(&patientEmail, "patient", "", "Patient account email")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func purgeTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete refresh token records past their expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			jwtManager := utils.NewJWTManager(
				s.cfg.JWT.Secret,
				s.cfg.JWT.AccessTokenExpiry.Duration,
				s.cfg.JWT.RefreshTokenExpiry.Duration,
			)
			sessions := service.NewSessionManager(s.repos.User, s.repos.Token, jwtManager)

			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired refresh tokens\n", n)
			return nil
		},
	}
}
