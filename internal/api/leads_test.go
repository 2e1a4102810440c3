package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmobiliaria/server/internal/models"
	"inmobiliaria/server/internal/queue"
)

func TestCreateLead(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/leads", map[string]interface{}{
		"name":    "  Ana Gómez ",
		"email":   " ana@example.com ",
		"phone":   "",
		"message": "Quiero la guía",
		"source":  "lead_magnet",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	lead := decode[models.Lead](t, w)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Ana Gómez", lead.Name)
	assert.Equal(t, "ana@example.com", lead.Email)
	assert.Nil(t, lead.Phone)
	require.NotNil(t, lead.Message)
	assert.Equal(t, "Quiero la guía", *lead.Message)
	assert.Equal(t, models.LeadSourceLeadMagnet, lead.Source)

	// Queued for notification
	assert.Equal(t, 1, env.queue.Len())

	leads, err := env.db.ListLeads(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, lead.ID, leads[0].ID)
}

func TestCreateLead_DefaultsToContact(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/leads", map[string]string{
		"name":  "Luis",
		"email": "luis@example.com",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.LeadSourceContact, decode[models.Lead](t, w).Source)
}

func TestCreateLead_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"blank name", map[string]string{"name": "   ", "email": "ana@example.com"}, "name"},
		{"missing email", map[string]string{"name": "Ana"}, "email"},
		{"invalid email", map[string]string{"name": "Ana", "email": "not-an-email"}, "email"},
		{"unknown source", map[string]string{"name": "Ana", "email": "ana@example.com", "source": "billboard"}, "source"},
		{"property without id", map[string]string{"name": "Ana", "email": "ana@example.com", "source": "property"}, "property_id"},
		{"malformed property id", map[string]string{"name": "Ana", "email": "ana@example.com", "property_id": "42"}, "property_id"},
		{"unknown property", map[string]string{"name": "Ana", "email": "ana@example.com", "source": "property", "property_id": "5f1d7f0e-8a3c-4d59-9a53-2b1c3f1e9d10"}, "property_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/leads", tt.body, false)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			resp := decode[struct {
				Details []ValidationErrorDetail `json:"details"`
			}](t, w)
			fields := []string{}
			for _, d := range resp.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	assert.Zero(t, env.queue.Len())
}

func TestCreateLead_ForProperty(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t, propertyBody("Local con Vidriera"))

	w := env.do(http.MethodPost, "/api/leads", map[string]string{
		"name":        "Marta",
		"email":       "marta@example.com",
		"source":      "property",
		"property_id": property.ID,
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	lead := decode[models.Lead](t, w)
	require.NotNil(t, lead.PropertyID)
	assert.Equal(t, property.ID, *lead.PropertyID)
}

func TestCreateLead_SavedWhenQueueRejects(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.queue.Close())

	w := env.do(http.MethodPost, "/api/leads", map[string]string{
		"name":  "Ana",
		"email": "ana@example.com",
	}, false)
	assert.Equal(t, http.StatusCreated, w.Code)

	leads, err := env.db.ListLeads(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, leads, 1)
	assert.ErrorIs(t, env.queue.Push(&models.Lead{}), queue.ErrQueueClosed)
}

func TestAdminLeads(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t, propertyBody("Local Destacado"))

	for _, body := range []map[string]string{
		{"name": "Ana", "email": "ana@example.com", "source": "lead_magnet"},
		{"name": "Luis", "email": "luis@example.com"},
		{"name": "Marta", "email": "marta@example.com", "source": "property", "property_id": property.ID},
	} {
		w := env.do(http.MethodPost, "/api/leads", body, false)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(http.MethodGet, "/api/admin/leads", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Lead](t, w)
	assert.Len(t, all, 3)

	w = env.do(http.MethodGet, "/api/admin/leads?source=property", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decode[[]models.Lead](t, w)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Marta", filtered[0].Name)

	w = env.do(http.MethodGet, "/api/admin/leads?source=billboard", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/admin/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.DashboardStats](t, w)
	assert.Equal(t, int64(3), stats.TotalLeads)
	assert.Equal(t, map[string]int64{"lead_magnet": 1, "property": 1, "contact": 1}, stats.LeadsBySource)
	assert.Equal(t, 1, stats.TotalProperties)
	assert.Equal(t, 0, stats.FeaturedProperties)

	w = env.do(http.MethodDelete, "/api/admin/leads/"+filtered[0].ID, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodDelete, "/api/admin/leads/"+filtered[0].ID, nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
