package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubdash/pkg/auth"
	"clubdash/pkg/club"
	"clubdash/pkg/config"
	"clubdash/pkg/ocr"
	"clubdash/pkg/store"
	"clubdash/process/report"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg config.Config
	log *slog.Logger
	db  *gorm.DB
	now func() time.Time
}

const noDatabase = "no-database"

// openFunc is swapped in tests.
var openFunc = func(cfg config.Config) (*gorm.DB, error) {
	return store.Open(cfg.DSN, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

func newRootCmd() *cobra.Command {
	e := &env{now: time.Now}
	root := &cobra.Command{
		Use:           "clubctl",
		Short:         "Maintenance tasks for the club dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = cfg.Logger(cmd.ErrOrStderr())
			if cmd.Annotations[noDatabase] == "true" {
				return nil
			}
			e.db, err = openFunc(cfg)
			return err
		},
	}
	root.AddCommand(migrateCmd(e), createUserCmd(e), resetPasswordCmd(e), reportCmd(e), projectCmd(e), ocrCmd(e))
	return root
}

func migrateCmd(e *env) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and the shared accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store.AutoMigrate(e.db, e.log); err != nil {
				return err
			}
			if err := auth.EnsureSharedAccounts(e.db, e.cfg.AdminPassword, e.cfg.VisitorPassword); err != nil {
				return err
			}
			if seed || e.cfg.SeedDemo {
				seeded, err := store.SeedDemo(cmd.Context(), e.db, e.now())
				if err != nil {
					return err
				}
				if seeded {
					e.log.Info("demo data seeded")
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed demo data into an empty database")
	return cmd
}

func createUserCmd(e *env) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "create-user <username> <password>",
		Short: "Create a login with the admin or visitor role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := auth.ParseRole(role)
			if r == auth.RoleNone {
				return fmt.Errorf("unknown role %q", role)
			}
			u, err := auth.Register(e.db, args[0], args[1], r)
			if errors.Is(err, auth.ErrUserExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id=%d role=%s)\n", u.Username, u.ID, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(auth.RoleVisitor), "admin or visitor")
	return cmd
}

func resetPasswordCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username> <password>",
		Short: "Replace the password of an existing user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ResetPassword(e.db, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
			return nil
		},
	}
}

// ocrCmd reads a receipt image and prints what the ingester would record.
func ocrCmd(e *env) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:         "ocr <image>",
		Short:       "Read the paid amount of a receipt image",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{noDatabase: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ocr.ExtractAmount(ocr.Tesseract{Languages: []string{lang}}, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "amount=%s conf=%.2f found=%q min=%.2f\n",
				club.FormatBRL(res.Amount), res.Confidence, res.Raw, e.cfg.OCRMinConfidence)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "por", "tesseract language")
	return cmd
}

func reportCmd(e *env) *cobra.Command {
	var month string
	var list bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the treasury totals of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := club.MonthOf(e.now())
			if month != "" {
				var err error
				if key, err = club.ParseMonthKey(month); err != nil {
					return err
				}
			}
			return report.Month(cmd.Context(), cmd.OutOrStdout(), e.records(), key, list)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM or M-YYYY (default current)")
	cmd.Flags().BoolVar(&list, "list", false, "list the month's transactions")
	return cmd
}

func projectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Print the balance projection until December",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report.Projection(cmd.Context(), cmd.OutOrStdout(), e.records(), e.cfg.DuesRate, e.now())
		},
	}
}

func (e *env) records() store.Store {
	return store.NewGorm(e.db, store.WithLogger(e.log), store.WithClock(e.now))
}
