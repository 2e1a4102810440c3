package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inmobiliaria/server/internal/models"
)

func (d *Database) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := d.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM admins
		WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin: %w", err)
	}
	return &admin, nil
}

// CreateAdmin stores an admin account. Emails are stored lowercase.
func (d *Database) CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	admin := &models.Admin{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    d.now(),
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, admin.ID, admin.Email, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert admin: %w", err)
	}
	return admin, nil
}
