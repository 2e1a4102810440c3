package database

import (
	"context"
	"database/sql"
	"fmt"

	"inmobiliaria/server/internal/models"
)

// GetTelegramConfig returns the stored Telegram settings, nil when none were saved
func (d *Database) GetTelegramConfig(ctx context.Context) (*models.TelegramConfig, error) {
	var config models.TelegramConfig
	err := d.db.QueryRowContext(ctx, `
		SELECT id, is_enabled, bot_token, chat_id, created_at, updated_at
		FROM telegram_config
		WHERE id = 1
	`).Scan(&config.ID, &config.IsEnabled, &config.BotToken, &config.ChatID, &config.CreatedAt, &config.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query telegram config: %w", err)
	}
	return &config, nil
}

// UpdateTelegramConfig stores the Telegram settings, keeping a single row
func (d *Database) UpdateTelegramConfig(ctx context.Context, request *models.TelegramConfigRequest) error {
	now := d.now()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO telegram_config (id, is_enabled, bot_token, chat_id, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			is_enabled = excluded.is_enabled,
			bot_token = excluded.bot_token,
			chat_id = excluded.chat_id,
			updated_at = excluded.updated_at
	`, request.IsEnabled, request.BotToken, request.ChatID, now, now)
	if err != nil {
		return fmt.Errorf("failed to save telegram config: %w", err)
	}
	return nil
}
