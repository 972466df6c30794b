package database

import (
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/oneword-blog-backend/config"
	"github.com/rpupo63/oneword-blog-backend/models"
)

//go:embed schema.sql
var supabaseSchema string

// Migrate creates or updates the blogs table. Supabase deployments also get
// the auth.users foreign key and row level security policies.
func Migrate(db *gorm.DB, dbType string) error {
	if dbType == config.DBTypeSupabase {
		log.Info().Msg("Applying Supabase schema...")
		if err := db.Exec(supabaseSchema).Error; err != nil {
			return fmt.Errorf("applying supabase schema: %w", err)
		}
	}

	log.Info().Msg("Migrating models...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}
	return nil
}
