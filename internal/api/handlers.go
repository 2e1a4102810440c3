package api

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/auth"
	"inmobiliaria/server/internal/database"
	"inmobiliaria/server/internal/queue"
	"inmobiliaria/server/internal/telegram"
)

// GeocodeRunner runs the coordinate backfill on demand
type GeocodeRunner interface {
	RunNow(ctx context.Context) (processed int, failed int, err error)
}

type Handler struct {
	db              *database.Database
	logger          *logrus.Logger
	auth            *auth.Service
	leadQueue       *queue.LeadQueue
	telegramService *telegram.Service
	geocodeJobs     GeocodeRunner
}

// Services are the collaborators of the handlers. LeadQueue and GeocodeJobs
// are optional.
type Services struct {
	Auth        *auth.Service
	LeadQueue   *queue.LeadQueue
	Telegram    *telegram.Service
	GeocodeJobs GeocodeRunner
}

func NewHandler(db *database.Database, services Services, logger *logrus.Logger) (*Handler, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if services.Telegram == nil {
		services.Telegram = telegram.NewService(logger)
	}

	if err := registerValidations(); err != nil {
		return nil, err
	}

	return &Handler{
		db:              db,
		logger:          logger,
		auth:            services.Auth,
		leadQueue:       services.LeadQueue,
		telegramService: services.Telegram,
		geocodeJobs:     services.GeocodeJobs,
	}, nil
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
