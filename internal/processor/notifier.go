package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"inmobiliaria/server/config"
	"inmobiliaria/server/internal/models"
	"inmobiliaria/server/internal/queue"
)

// LeadNotifier delivers a notification about one lead
type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, lead *models.Lead, property *models.Property) error
}

// PropertyLookup resolves the listing a lead refers to
type PropertyLookup interface {
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)
}

// Notifier drains the lead queue and sends one notification per lead
type Notifier struct {
	queue      *queue.LeadQueue
	notifier   LeadNotifier
	properties PropertyLookup
	logger     *logrus.Logger
	maxRetries int
	retryDelay time.Duration
	once       sync.Once
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewNotifier creates a new notifier instance
func NewNotifier(q *queue.LeadQueue, notifier LeadNotifier, properties PropertyLookup, cfg *config.Config, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		queue:      q,
		notifier:   notifier,
		properties: properties,
		logger:     logger,
		maxRetries: cfg.Notifications.MaxRetries,
		retryDelay: cfg.Notifications.RetryDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes the notifier to the queue. Later calls are no-ops.
func (n *Notifier) Start() {
	n.once.Do(func() {
		n.queue.Subscribe(n.processBatch)
	})
}

// Stop cancels in-flight notifications and pending retries
func (n *Notifier) Stop() {
	n.cancel()
}

// processBatch notifies every lead of the batch. A lead that still fails after
// the retries does not prevent the others from being sent.
func (n *Notifier) processBatch(batch []*models.Lead) error {
	var failed int
	for _, lead := range batch {
		if err := n.notifyLead(n.ctx, lead); err != nil {
			n.logger.WithError(err).WithField("lead_id", lead.ID).Error("Failed to notify lead")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to notify %d of %d leads", failed, len(batch))
	}
	n.logger.Debugf("Notified batch of %d leads", len(batch))
	return nil
}

func (n *Notifier) notifyLead(ctx context.Context, lead *models.Lead) error {
	property := n.lookupProperty(ctx, lead)

	var err error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			n.logger.Infof("Retrying lead notification, attempt %d of %d", attempt, n.maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.retryDelay):
			}
		}

		err = n.notifier.NotifyNewLead(ctx, lead, property)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		n.logger.WithError(err).Warn("Lead notification failed")
	}

	return fmt.Errorf("failed to notify lead after %d attempts: %w", n.maxRetries+1, err)
}

// lookupProperty returns the listing of a lead, nil when it has none or it is gone
func (n *Notifier) lookupProperty(ctx context.Context, lead *models.Lead) *models.Property {
	if lead.PropertyID == nil || n.properties == nil {
		return nil
	}
	property, err := n.properties.GetPropertyByID(ctx, *lead.PropertyID)
	if err != nil {
		n.logger.WithError(err).WithField("property_id", *lead.PropertyID).Warn("Failed to load lead property")
		return nil
	}
	return property
}
