package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inmobiliaria/server/internal/auth"
	"inmobiliaria/server/internal/models"
)

func (h *Handler) Login(c *gin.Context) {
	var request models.LoginRequest
	if !h.bindJSON(c, &request) {
		return
	}

	response, err := h.auth.Login(c.Request.Context(), request.Email, request.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to log in")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me returns the identity carried by the session token
func (h *Handler) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         claims.Subject,
		"email":      claims.Email,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt.Time,
	})
}
