package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mandate/internal/app"
	jwttoken "mandate/internal/jwt_token"
	"mandate/internal/mandate/refnum"
	"mandate/internal/mandate/verify"
	"mandate/internal/platform/config"
	"mandate/internal/platform/logger"
	"mandate/internal/platform/postgres"
	"mandate/internal/staff/password"
	staffservice "mandate/internal/staff/service"
	staffstore "mandate/internal/staff/store"
	"mandate/migrations"
	"mandate/pkg/platform/audit/publishers/compliance"
	auditpostgres "mandate/pkg/platform/audit/store/postgres"
)

var timeout time.Duration

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mandatectl",
		Short:         "Operate a mandate service deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newBootstrapCmd())
	root.AddCommand(newSignLinkCmd())
	root.AddCommand(newVerifyLinkCmd())
	return root
}

// newMigrateCmd applies pending schema migrations
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := postgres.Migrate(ctx, db, migrations.FS, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}
}

// newBootstrapCmd creates the first super admin
func newBootstrapCmd() *cobra.Command {
	var email, plain string
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the first super admin account",
		Long: `Create the first super admin account when none exists yet.

Running it again is a no-op. When --password is omitted a random password
is generated and printed once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if email == "" {
				email = cfg.Bootstrap.SuperAdminEmail
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			generated := false
			if plain == "" {
				if plain, err = password.Generate(); err != nil {
					return err
				}
				generated = true
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := staffservice.New(
				staffstore.NewPostgres(db),
				jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, app.TokenAudience),
				staffservice.WithLogger(log),
				staffservice.WithAuditPublisher(compliance.New(auditpostgres.New(db), compliance.WithLogger(log))),
				staffservice.WithPasswordHasher(password.NewHasher(cfg.Auth.BcryptCost)),
				staffservice.WithTokenTTL(cfg.Auth.AccessTokenTTL),
			)
			if err != nil {
				return err
			}
			created, err := svc.BootstrapSuperAdmin(ctx, email, plain)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintln(out, "a super admin already exists; nothing to do")
				return nil
			}
			fmt.Fprintf(out, "created super admin %s\n", email)
			if generated {
				fmt.Fprintf(out, "generated password: %s\n", plain)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Super admin email (default: MANDATE_BOOTSTRAP_EMAIL)")
	cmd.Flags().StringVar(&plain, "password", "", "Super admin password (generated when empty)")
	return cmd
}

// newSignLinkCmd prints the verification URL for a reference
func newSignLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-link <reference>",
		Short: "Print the signed verification link of a reference number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := loadSigner()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signer.URL(refnum.Normalize(args[0])))
			return nil
		},
	}
}

// newVerifyLinkCmd checks a signature offline
func newVerifyLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-link <reference> <signature>",
		Short: "Check a verification signature without touching the database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := loadSigner()
			if err != nil {
				return err
			}
			reference := refnum.Normalize(args[0])
			if !signer.Valid(reference, args[1]) {
				return fmt.Errorf("signature does not match %s", reference)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signature valid for %s\n", reference)
			return nil
		},
	}
}

func load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.Log), nil
}

func loadSigner() (*verify.Signer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return verify.NewSigner(cfg.Documents.SigningKey, cfg.Documents.VerificationBaseURL)
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("MANDATE_DATABASE_URL is required")
	}
	return postgres.Open(ctx, cfg.Database)
}
