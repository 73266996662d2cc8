// One-off importer: loads providers from a YAML file into the database,
// creating profiles and service profiles. Used to bootstrap a fresh install
// from an exported provider list.
//
// Usage: go run scripts/import_providers.go -db data/karigar.db -file providers.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"karigar/internal/database"
	"karigar/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type providersFile struct {
	Providers []struct {
		UserID      string `yaml:"user_id"`
		Name        string `yaml:"name"`
		Contact     string `yaml:"contact"`
		City        string `yaml:"city"`
		Area        string `yaml:"area"`
		ServiceType string `yaml:"service_type"`
		Bio         string `yaml:"bio"`
	} `yaml:"providers"`
}

func main() {
	dbPath := flag.String("db", "data/karigar.db", "path to the sqlite database")
	filePath := flag.String("file", "providers.yaml", "path to the providers YAML file")
	flag.Parse()

	if err := run(*dbPath, *filePath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, filePath string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read providers file: %w", err)
	}

	var file providersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse providers file: %w", err)
	}

	db, err := database.NewDB(dbPath, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	imported := 0
	for _, p := range file.Providers {
		if p.UserID == "" || p.Name == "" {
			logger.Warn().Str("name", p.Name).Msg("skipping entry without user_id or name")
			continue
		}
		if !models.IsValidServiceType(p.ServiceType) {
			logger.Warn().Str("service_type", p.ServiceType).Msg("skipping entry with unknown service type")
			continue
		}

		err := db.CreateOrUpdateProfile(ctx, &models.Profile{
			UserID:  p.UserID,
			Name:    p.Name,
			Role:    models.RoleProvider,
			Contact: p.Contact,
			City:    p.City,
			Area:    p.Area,
		})
		if err != nil {
			return fmt.Errorf("import profile %s: %w", p.UserID, err)
		}

		err = db.CreateServiceProfile(ctx, &models.ServiceProfile{
			ID:          uuid.NewString(),
			UserID:      p.UserID,
			ServiceType: p.ServiceType,
			Bio:         p.Bio,
			Available:   true,
		})
		if err != nil {
			return fmt.Errorf("import service profile for %s: %w", p.UserID, err)
		}
		imported++
	}

	logger.Info().Int("imported", imported).Msg("provider import complete")
	return nil
}
