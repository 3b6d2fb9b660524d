package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"go.uber.org/zap"
)

// ErrNotificationQueueFull is returned when the delivery queue cannot accept
// another message
var ErrNotificationQueueFull = errors.New("notification queue is full")

// ErrNotifierStopped is returned by Notify after Stop
var ErrNotifierStopped = errors.New("notifier is stopped")

// DefaultDeliveryTimeout bounds a single delivery attempt
const DefaultDeliveryTimeout = 30 * time.Second

// Notifier tells a client about a committed order. It is called only after
// the order transaction has committed, so a failure here never affects the
// order itself.
type Notifier interface {
	Notify(ctx context.Context, order *models.Order) error
}

// MailNotifier renders order confirmations and hands them to a background
// worker that delivers them through a Mailer.
type MailNotifier struct {
	mailer  Mailer
	logger  *zap.Logger
	appName string
	appURL  string

	deliveryTimeout time.Duration

	queue  chan *MailMessage
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

var notifierInstance Notifier

// NewMailNotifier creates a notifier with a queue of queueSize messages
func NewMailNotifier(mailer Mailer, logger *zap.Logger, appName, appURL string, queueSize int) *MailNotifier {
	return &MailNotifier{
		mailer:  mailer,
		logger:  logger,
		appName: appName,
		appURL:  appURL,
		queue:   make(chan *MailMessage, queueSize),

		deliveryTimeout: DefaultDeliveryTimeout,
	}
}

// SetDeliveryTimeout changes how long one delivery may take. Call it before Start.
func (n *MailNotifier) SetDeliveryTimeout(timeout time.Duration) {
	if timeout > 0 {
		n.deliveryTimeout = timeout
	}
}

// InitNotifier sets the global notifier instance
func InitNotifier(n Notifier) Notifier {
	notifierInstance = n
	return notifierInstance
}

// GetNotifier returns the initialized notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// Start launches the delivery worker. It runs until Stop is called; every
// delivery gets a context derived from ctx and bounded by the delivery timeout.
func (n *MailNotifier) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for msg := range n.queue {
			n.deliver(ctx, msg)
		}
	}()
}

func (n *MailNotifier) deliver(ctx context.Context, msg *MailMessage) {
	ctx, cancel := context.WithTimeout(ctx, n.deliveryTimeout)
	defer cancel()

	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Error("Failed to deliver order confirmation",
			zap.Uint("order_id", msg.OrderID),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("Order confirmation delivered", zap.Uint("order_id", msg.OrderID), zap.String("to", msg.To))
}

// Stop closes the queue and waits for queued messages to be delivered. When
// ctx ends first, the delivery in flight is cancelled, whatever is still
// queued fails fast and ctx.Err() is returned.
func (n *MailNotifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return nil
	}
	n.stopped = true
	close(n.queue)
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	defer func() {
		if n.cancel != nil {
			n.cancel()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		n.logger.Warn("Notifier stopped before the queue drained", zap.Int("pending", len(n.queue)))
		return ctx.Err()
	}
}

// Notify renders the confirmation for order and enqueues it without blocking
func (n *MailNotifier) Notify(ctx context.Context, order *models.Order) error {
	msg, err := FormatOrderConfirmation(order, n.appName, n.appURL)
	if err != nil {
		return err
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return ErrNotifierStopped
	}

	select {
	case n.queue <- msg:
		return nil
	default:
		return ErrNotificationQueueFull
	}
}
