package api

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/database"
	"inmobiliaria/server/internal/models"
)

// CreateLead stores a lead captured by one of the public forms and queues
// its notification. A notification that cannot be queued never fails the
// request.
func (h *Handler) CreateLead(c *gin.Context) {
	var request models.LeadRequest
	if !h.bindJSON(c, &request) {
		return
	}

	if request.Source == models.LeadSourceProperty && request.PropertyID == "" {
		fieldError(c, "property_id", "validation_required", "Field 'property_id' is required for property leads")
		return
	}

	if request.PropertyID != "" {
		_, err := h.db.GetPropertyByID(c.Request.Context(), request.PropertyID)
		if errors.Is(err, database.ErrNotFound) {
			fieldError(c, "property_id", "validation_exists", "Field 'property_id' does not match any property")
			return
		}
		if err != nil {
			h.logger.WithError(err).Error("Failed to get lead property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead"})
			return
		}
	}

	lead := request.ToLead()
	if err := h.db.CreateLead(c.Request.Context(), lead); err != nil {
		h.logger.WithError(err).Error("Failed to create lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"lead_id": lead.ID,
		"source":  lead.Source,
	}).Info("Lead captured")

	if h.leadQueue != nil {
		if err := h.leadQueue.Push(lead); err != nil {
			h.logger.WithError(err).WithField("lead_id", lead.ID).Warn("Failed to queue lead notification")
		}
	}

	c.JSON(http.StatusCreated, lead)
}

func (h *Handler) ListLeads(c *gin.Context) {
	source := c.Query("source")
	if source != "" && !slices.Contains(models.LeadSources, source) {
		fieldError(c, "source", "validation_oneof", "Field 'source' must be one of [lead_magnet property contact]")
		return
	}

	leads, err := h.db.ListLeads(c.Request.Context(), source)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get leads"})
		return
	}

	c.JSON(http.StatusOK, leads)
}

func (h *Handler) DeleteLead(c *gin.Context) {
	id := c.Param("id")
	err := h.db.DeleteLead(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to delete lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.db.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
