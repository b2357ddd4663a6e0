package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alumni-connect/internal/app"
	"alumni-connect/internal/core/config"
	"alumni-connect/internal/core/logger"
	"alumni-connect/internal/domain"
)

type adminFlags struct {
	configPath     string
	email          string
	password       string
	firstName      string
	lastName       string
	department     string
	graduationYear int
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f adminFlags
	cmd := &cobra.Command{
		Use:   "create_admin",
		Short: "Provision an admin account (admins cannot self-register)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, f)
		},
		SilenceUsage: true,
	}
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", os.Getenv("CONFIG_PATH"), "config file path")
	fl.StringVar(&f.email, "email", "", "admin email")
	fl.StringVar(&f.password, "password", "", "admin password (or ADMIN_PASSWORD)")
	fl.StringVar(&f.firstName, "first-name", "Admin", "first name")
	fl.StringVar(&f.lastName, "last-name", "User", "last name")
	fl.StringVar(&f.department, "department", "Administration", "department")
	fl.IntVar(&f.graduationYear, "graduation-year", time.Now().Year(), "graduation year")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f adminFlags) error {
	_ = godotenv.Load()
	if f.password == "" {
		f.password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.Read(f.configPath)
	if err != nil {
		return err
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	a, closeApp, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeApp()

	u, err := a.Users.ProvisionAdmin(ctx, domain.RegisterInput{
		FirstName:      f.firstName,
		LastName:       f.lastName,
		Email:          f.email,
		Password:       f.password,
		GraduationYear: f.graduationYear,
		Department:     f.department,
	})
	if ve, ok := domain.AsValidation(err); ok {
		for _, fe := range ve.Fields {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
		}
		return errors.New("invalid admin input")
	}
	if err != nil {
		log.Error("provision admin failed", zap.String("email", f.email), zap.Error(err))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin created: id=%s email=%s\n", u.ID, u.Email)
	return nil
}
