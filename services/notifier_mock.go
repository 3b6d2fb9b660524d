package services

import (
	"context"
	"sync"

	"github.com/kendall-kelly/storefront-api/models"
)

// MockNotifier is a mock implementation of Notifier for testing
type MockNotifier struct {
	notifications []*MailMessage
	err           error
	mu            sync.RWMutex
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetAsMockForTesting sets this mock as the global notifier instance for testing
func (m *MockNotifier) SetAsMockForTesting() {
	SetNotifier(m)
}

// FailWith makes every following Notify call return err
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Notify records the rendered confirmation for order
func (m *MockNotifier) Notify(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	msg, err := FormatOrderConfirmation(order, "Storefront", "http://localhost:8080")
	if err != nil {
		return err
	}
	m.notifications = append(m.notifications, msg)
	return nil
}

// GetNotifications returns all recorded notifications (for testing assertions)
func (m *MockNotifier) GetNotifications() []*MailMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	notifications := make([]*MailMessage, len(m.notifications))
	copy(notifications, m.notifications)
	return notifications
}

// Clear removes all recorded notifications and any configured failure
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	m.notifications = nil
	m.err = nil
	m.mu.Unlock()
}

// MockMailer records delivered messages for testing
type MockMailer struct {
	sent []*MailMessage
	err  error
	mu   sync.Mutex
}

// NewMockMailer creates a new mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// FailWith makes every following Send call return err
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *MockMailer) Send(ctx context.Context, msg *MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns every delivered message
func (m *MockMailer) Sent() []*MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent := make([]*MailMessage, len(m.sent))
	copy(sent, m.sent)
	return sent
}
