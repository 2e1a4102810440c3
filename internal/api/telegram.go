package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"inmobiliaria/server/internal/models"
	"inmobiliaria/server/internal/telegram"
)

const telegramTestMessage = "🔔 Notificación de prueba\n\nSi ves este mensaje, la configuración de Telegram funciona correctamente."

// GetTelegramConfig returns the current Telegram configuration
func (h *Handler) GetTelegramConfig(c *gin.Context) {
	config, err := h.db.GetTelegramConfig(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get Telegram config"})
		return
	}

	// Nothing saved yet, report what the service was started with
	if config == nil {
		active := h.telegramService.Config()
		c.JSON(http.StatusOK, gin.H{
			"is_enabled": active.IsEnabled,
			"chat_id":    active.ChatID,
			"bot_token":  telegram.MaskToken(active.BotToken),
		})
		return
	}

	// Don't send the full bot token back to the client
	config.BotToken = telegram.MaskToken(config.BotToken)
	c.JSON(http.StatusOK, config)
}

// UpdateTelegramConfig checks the credentials with a test message, then saves them
func (h *Handler) UpdateTelegramConfig(c *gin.Context) {
	var request models.TelegramConfigRequest
	if !h.bindJSON(c, &request) {
		return
	}

	request.BotToken = strings.TrimSpace(request.BotToken)
	request.ChatID = strings.TrimSpace(request.ChatID)

	if len(request.BotToken) < 20 || !strings.Contains(request.BotToken, ":") {
		fieldError(c, "bot_token", "validation_format", "Invalid bot token format. Please check your bot token from @BotFather")
		return
	}

	if request.ChatID == "" {
		fieldError(c, "chat_id", "validation_required", "Field 'chat_id' is required")
		return
	}

	if err := h.telegramService.SendWith(c.Request.Context(), request.BotToken, request.ChatID, telegramTestMessage); err != nil {
		h.logger.WithError(err).Warn("Failed to send Telegram test message")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.UpdateTelegramConfig(c.Request.Context(), &request); err != nil {
		h.logger.WithError(err).Error("Failed to update Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration to database"})
		return
	}

	config, err := h.db.GetTelegramConfig(c.Request.Context())
	if err != nil || config == nil {
		h.logger.WithError(err).Error("Failed to reload Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload configuration"})
		return
	}
	h.telegramService.UpdateConfig(config)

	c.JSON(http.StatusOK, gin.H{"message": "Telegram configuration updated successfully"})
}

// TestTelegramConfig sends a sample lead notification with the active configuration
func (h *Handler) TestTelegramConfig(c *gin.Context) {
	config := h.telegramService.Config()
	if !config.IsEnabled || config.BotToken == "" || config.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Telegram is not configured or is disabled"})
		return
	}

	phone := "+595 981 000000"
	message := "Me interesa esta propiedad, ¿podemos coordinar una visita?"
	sample := &models.Lead{
		ID:        "test",
		Name:      "Cliente de prueba",
		Email:     "cliente@example.com",
		Phone:     &phone,
		Message:   &message,
		Source:    models.LeadSourceProperty,
		CreatedAt: time.Now(),
	}
	listing := &models.Property{Title: "Casa de ejemplo", Location: "Encarnación"}

	if err := h.telegramService.SendMessage(c.Request.Context(), telegram.FormatLeadMessage(sample, listing)); err != nil {
		h.logger.WithError(err).Warn("Failed to send Telegram test notification")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent"})
}
