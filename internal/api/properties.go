package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inmobiliaria/server/config"
	"inmobiliaria/server/internal/database"
	"inmobiliaria/server/internal/geometry"
	"inmobiliaria/server/internal/models"
	"inmobiliaria/server/internal/roi"
	"inmobiliaria/server/internal/scheduler"
)

func (h *Handler) ListProperties(c *gin.Context) {
	var filter models.PropertyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}

	properties, err := h.db.ListProperties(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

// propertyBySlug loads the listing named by the slug parameter. It writes
// the error response and returns nil when the listing cannot be loaded.
func (h *Handler) propertyBySlug(c *gin.Context) *models.Property {
	property, err := h.db.GetPropertyBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return nil
	}
	if err != nil {
		h.logger.WithError(err).WithField("slug", c.Param("slug")).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return nil
	}
	return property
}

func (h *Handler) GetProperty(c *gin.Context) {
	if property := h.propertyBySlug(c); property != nil {
		c.JSON(http.StatusOK, property)
	}
}

// EstimateProperty runs the return estimate for a listing, using its rental
// potential as the monthly rent.
func (h *Handler) EstimateProperty(c *gin.Context) {
	property := h.propertyBySlug(c)
	if property == nil {
		return
	}

	var rent float64
	if property.RentalPotential != nil {
		rent = *property.RentalPotential
	}

	h.respondEstimate(c, roi.Input{
		PropertyType:  config.CategoryForListingType(property.PropertyType),
		PurchasePrice: property.Price,
		MonthlyRent:   rent,
		HoldingYears:  roi.ParseHoldingYears(c.Query("holding_years")),
	})
}

func (h *Handler) NearbyProperties(c *gin.Context) {
	radius := geometry.DefaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(parsed > 0) || parsed > 500 {
			fieldError(c, "radius_km", "validation_radius", "Field 'radius_km' must be a number between 0 and 500")
			return
		}
		radius = parsed
	}

	property := h.propertyBySlug(c)
	if property == nil {
		return
	}

	listings, err := h.db.ListGeolocatedProperties(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get geolocated properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get nearby properties"})
		return
	}

	c.JSON(http.StatusOK, geometry.Nearby(property, listings, radius))
}

func (h *Handler) PropertiesGeoJSON(c *gin.Context) {
	listings, err := h.db.ListGeolocatedProperties(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get geolocated properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, geometry.FeatureCollection(listings))
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var request models.PropertyRequest
	if !h.bindJSON(c, &request) {
		return
	}

	property := request.ToProperty()
	if property.Slug == "" {
		property.Slug = models.GenerateSlug(property.Title)
		if len(property.Slug) < 3 {
			fieldError(c, "slug", "validation_slug", "Could not derive a slug from the title, please provide one")
			return
		}
	}

	err := h.db.CreateProperty(c.Request.Context(), property)
	if errors.Is(err, database.ErrSlugTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	h.logger.WithField("slug", property.Slug).Info("Property created")
	c.JSON(http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.db.GetPropertyByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	var request models.PropertyRequest
	if !h.bindJSON(c, &request) {
		return
	}

	property := request.ToProperty()
	property.ID = existing.ID
	if property.Slug == "" {
		property.Slug = existing.Slug
	}

	err = h.db.UpdateProperty(c.Request.Context(), property)
	switch {
	case errors.Is(err, database.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
		return
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	case err != nil:
		h.logger.WithError(err).WithField("id", id).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id := c.Param("id")
	err := h.db.DeleteProperty(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	h.logger.WithField("id", id).Info("Property deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// GeocodeProperties backfills missing listing coordinates on demand
func (h *Handler) GeocodeProperties(c *gin.Context) {
	if h.geocodeJobs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding is not available"})
		return
	}

	processed, failed, err := h.geocodeJobs.RunNow(c.Request.Context())
	if errors.Is(err, scheduler.ErrJobRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Geocoding already in progress"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to update coordinates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Coordinates updated",
		"processed": processed,
		"failed":    failed,
	})
}
