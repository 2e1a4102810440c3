package models

import (
	"strings"
	"time"
)

// Lead sources, the form a lead was captured from
const (
	LeadSourceLeadMagnet = "lead_magnet"
	LeadSourceProperty   = "property"
	LeadSourceContact    = "contact"
)

// LeadSources lists the known sources in display order
var LeadSources = []string{LeadSourceLeadMagnet, LeadSourceProperty, LeadSourceContact}

type Lead struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null;index" json:"email"`
	Phone      *string   `json:"phone"`
	Message    *string   `json:"message"`
	Source     string    `gorm:"not null;index" json:"source"`
	PropertyID *string   `gorm:"type:text;index" json:"property_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// SourceLabel returns the label shown for the lead's source
func (l *Lead) SourceLabel() string {
	switch l.Source {
	case LeadSourceLeadMagnet:
		return "Guía"
	case LeadSourceProperty:
		return "Propiedad"
	default:
		return "Contacto"
	}
}

// LeadRequest is the public lead capture payload
type LeadRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Phone      string `json:"phone" binding:"max=30"`
	Message    string `json:"message" binding:"max=2000"`
	Source     string `json:"source" binding:"omitempty,oneof=lead_magnet property contact"`
	PropertyID string `json:"property_id" binding:"omitempty,uuid"`
}

// Normalize trims every field and applies the default source
func (r *LeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	r.Source = strings.TrimSpace(r.Source)
	r.PropertyID = strings.TrimSpace(r.PropertyID)
	if r.Source == "" {
		r.Source = LeadSourceContact
	}
}

// ToLead builds a lead from a normalized request, empty optional fields become null
func (r *LeadRequest) ToLead() *Lead {
	lead := &Lead{
		Name:   r.Name,
		Email:  r.Email,
		Source: r.Source,
	}
	if r.Phone != "" {
		phone := r.Phone
		lead.Phone = &phone
	}
	if r.Message != "" {
		message := r.Message
		lead.Message = &message
	}
	if r.PropertyID != "" {
		propertyID := r.PropertyID
		lead.PropertyID = &propertyID
	}
	return lead
}

// DashboardStats summarizes the back office
type DashboardStats struct {
	TotalLeads         int64            `json:"total_leads"`
	LeadsBySource      map[string]int64 `json:"leads_by_source"`
	TotalProperties    int              `json:"total_properties"`
	FeaturedProperties int              `json:"featured_properties"`
}
