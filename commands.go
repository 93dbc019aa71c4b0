package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/amirphl/countdown-contest/config"
	"github.com/amirphl/countdown-contest/migrations"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func databaseURL(cfg config.DatabaseConfig) string {
	return migrations.DatabaseURL(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := migrations.Up(databaseURL(cfg.Database)); err != nil {
				return err
			}
			log.Println("Migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := migrations.Down(databaseURL(cfg.Database), steps); err != nil {
				return err
			}
			log.Printf("Rolled back %d migration(s)", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 rolls back everything")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			v, dirty, err := migrations.Version(databaseURL(cfg.Database))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var username, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := initializeDatabase(cfg.Database)
			if err != nil {
				return err
			}
			admin, err := createAdmin(cmd.Context(), repository.NewAdminRepository(db), username, password, cfg.Security.BcryptCost)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (uuid=%s)\n", admin.Username, admin.UUID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "admin username")
	create.Flags().StringVar(&password, "password", "", "admin password")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

var errAdminExists = errors.New("admin already exists")

func createAdmin(ctx context.Context, repo repository.AdminRepository, username, password string, cost int) (*models.Admin, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	exists, err := repo.Exists(ctx, models.AdminFilter{Username: &username})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", errAdminExists, username)
	}

	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
	}
	if err := repo.Save(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func newSeedCommand() *cobra.Command {
	var countdown time.Duration
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample campaign",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := initializeDatabase(cfg.Database)
			if err != nil {
				return err
			}
			campaign := sampleCampaign(utils.UTCNow(), countdown)
			if err := repository.NewCampaignRepository(db).Save(cmd.Context(), campaign); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "campaign %s seeded, countdown ends at %s\n",
				campaign.UUID, utils.FormatRFC3339(campaign.CountdownEnd))
			return nil
		},
	}
	cmd.Flags().DurationVar(&countdown, "countdown", 45*time.Minute, "time until the secret code is revealed")
	return cmd
}

func sampleCampaign(now time.Time, countdown time.Duration) *models.Campaign {
	return &models.Campaign{
		SponsorName:        "TechFlow Pro",
		SponsorTagline:     "Revolutionizing Digital Innovation",
		SponsorWebsite:     "https://example.com",
		PosterURL:          "/attached_assets/generated_images/Tech_sponsor_ad_poster_de2247ee.png",
		SecretCode:         "TECH2024WIN",
		MysteryDescription: "Mystery Prize Awaits! Be the first to tell VideoWalker this secret code and win an amazing surprise gift worth over $200!",
		PrizeValue:         utils.ToPtr("$200+"),
		CountdownEnd:       now.Add(countdown),
		IsActive:           utils.ToPtr(true),
	}
}

func newExportWinnersCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-winners",
		Short: "Build the winners workbook and upload it or write it to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := initializeDatabase(cfg.Database)
			if err != nil {
				return err
			}
			f, _, err := buildFlows(cmd.Context(), cfg, db, nil)
			if err != nil {
				return err
			}

			if output == "" {
				export, err := f.export.Upload(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d winner(s) to %s\n", export.Rows, export.ObjectURL)
				return nil
			}

			export, err := f.export.BuildWorkbook(cmd.Context(), nil, nil)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, export.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d winner(s) to %s\n", export.Rows, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the workbook to this file instead of uploading it")
	return cmd
}
