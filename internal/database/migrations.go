package database

import (
	"fmt"

	"inmobiliaria/server/internal/models"
)

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			location TEXT NOT NULL,
			price REAL NOT NULL,
			price_type TEXT NOT NULL,
			property_type TEXT NOT NULL,
			area REAL NOT NULL,
			beds INTEGER NOT NULL DEFAULT 0,
			baths INTEGER NOT NULL DEFAULT 0,
			description TEXT,
			estimated_roi REAL,
			rental_potential REAL,
			featured BOOLEAN NOT NULL DEFAULT 0,
			video_url TEXT,
			latitude REAL,
			longitude REAL,
			images TEXT NOT NULL DEFAULT '[]',
			amenities TEXT NOT NULL DEFAULT '[]',
			geocoding_attempted BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %w", err)
	}

	// Create spatial index on coordinates
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`)
	if err != nil {
		return fmt.Errorf("failed to create coordinates index: %w", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create admins table: %w", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS telegram_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			is_enabled BOOLEAN NOT NULL DEFAULT 0,
			bot_token TEXT NOT NULL,
			chat_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create telegram_config table: %w", err)
	}

	if err := d.orm.AutoMigrate(&models.Lead{}); err != nil {
		return fmt.Errorf("failed to migrate leads table: %w", err)
	}

	return nil
}
