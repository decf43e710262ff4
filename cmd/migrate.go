package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rotkit/config"
	"rotkit/internal/entity"
	"rotkit/internal/repository"
	"rotkit/internal/service"
	"rotkit/internal/utils"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			db, err := config.ConnectionDb(cfg)
			if err != nil {
				return err
			}
			if err := repository.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

type seedAdminOptions struct {
	AdminID    string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Department string
}

func newSeedAdminCmd() *cobra.Command {
	var opts seedAdminOptions
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "create an admin account or reset its credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			db, err := config.ConnectionDb(cfg)
			if err != nil {
				return err
			}
			admin, err := buildSeedAdmin(opts, service.BcryptPasswordHasher{Cost: 12})
			if err != nil {
				return err
			}
			if err := seedAdmin(cmd.Context(), repository.NewAdminRepository(db), admin); err != nil {
				return err
			}
			logger.WithField("admin_id", admin.AdminID).Info("admin seeded")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.AdminID, "admin-id", "", "admin login identifier")
	flags.StringVar(&opts.Email, "email", "", "admin email address")
	flags.StringVar(&opts.Password, "password", "", "initial password")
	flags.StringVar(&opts.FirstName, "first-name", "", "first name")
	flags.StringVar(&opts.LastName, "last-name", "", "last name")
	flags.StringVar(&opts.Department, "department", "", "department")
	_ = cmd.MarkFlagRequired("admin-id")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func buildSeedAdmin(opts seedAdminOptions, hasher service.PasswordHasher) (*entity.Admin, error) {
	adminID := strings.TrimSpace(opts.AdminID)
	email := utils.NormalizeEmail(opts.Email)
	if adminID == "" || email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("admin-id and a valid email are required")
	}
	if len(opts.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	hash, err := hasher.Hash(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &entity.Admin{
		AdminID:      adminID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(opts.FirstName),
		LastName:     strings.TrimSpace(opts.LastName),
		IsActive:     true,
	}
	if department := strings.TrimSpace(opts.Department); department != "" {
		admin.Department = &department
	}
	return admin, nil
}

func seedAdmin(ctx context.Context, admins repository.AdminRepository, admin *entity.Admin) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := admins.Upsert(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
