package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"inmobiliaria/server/internal/models"
)

// CreateLead stores a captured lead, assigning its ID and creation time
func (d *Database) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = d.now()
	}

	if err := d.orm.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// ListLeads returns the leads, newest first, optionally restricted to one source
func (d *Database) ListLeads(ctx context.Context, source string) ([]models.Lead, error) {
	leads := []models.Lead{}

	query := d.orm.WithContext(ctx).Order("created_at DESC")
	if source != "" {
		query = query.Where("source = ?", source)
	}

	if err := query.Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	return leads, nil
}

func (d *Database) DeleteLead(ctx context.Context, id string) error {
	result := d.orm.WithContext(ctx).Where("id = ?", id).Delete(&models.Lead{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountLeadsBySource returns the number of leads per source. Every known
// source is present, with zero when it has no leads.
func (d *Database) CountLeadsBySource(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Source string
		Count  int64
	}

	err := d.orm.WithContext(ctx).
		Model(&models.Lead{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	counts := make(map[string]int64, len(models.LeadSources))
	for _, source := range models.LeadSources {
		counts[source] = 0
	}
	for _, row := range rows {
		counts[row.Source] = row.Count
	}
	return counts, nil
}

// GetDashboardStats summarizes leads and listings for the back office
func (d *Database) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	bySource, err := d.CountLeadsBySource(ctx)
	if err != nil {
		return nil, err
	}

	total, featured, err := d.CountProperties(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		LeadsBySource:      bySource,
		TotalProperties:    total,
		FeaturedProperties: featured,
	}
	for _, count := range bySource {
		stats.TotalLeads += count
	}
	return stats, nil
}
