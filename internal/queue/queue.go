package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// LeadQueue is an in-memory queue of captured leads waiting for notification
type LeadQueue struct {
	items    chan []*models.Lead
	done     chan struct{}
	stopped  chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.Lead) error
}

// NewLeadQueue creates a new lead queue with the specified buffer size
func NewLeadQueue(bufferSize int, logger *logrus.Logger) *LeadQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &LeadQueue{
		items:    make(chan []*models.Lead, bufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.Lead) error, 0),
	}
}

// Push adds a batch of leads to the queue without blocking
func (q *LeadQueue) Push(leads ...*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- leads:
		q.logger.WithField("batch_size", len(leads)).Debug("Pushed leads to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *LeadQueue) Subscribe(handler func([]*models.Lead) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue. Calling it twice is a no-op.
func (q *LeadQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.process()
}

func (q *LeadQueue) process() {
	defer close(q.stopped)
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *LeadQueue) processBatch(batch []*models.Lead) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process leads")
		}
	}
}

// Close stops the queue and waits for the batch in progress, if any.
// Batches still buffered are dropped.
func (q *LeadQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	close(q.done)
	q.mu.Unlock()

	if started {
		<-q.stopped
	}

	if dropped := len(q.items); dropped > 0 {
		q.logger.WithField("batches", dropped).Warn("Lead queue closed with pending batches")
	}
	return nil
}

// Len returns the current number of batches in the queue
func (q *LeadQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *LeadQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
