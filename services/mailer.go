package services

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// DefaultSMTPTimeout bounds dialing and the whole SMTP session when no
// timeout is configured
const DefaultSMTPTimeout = 10 * time.Second

// Mailer delivers a rendered message
type Mailer interface {
	Send(ctx context.Context, msg *MailMessage) error
}

// SMTPMailer delivers messages through an SMTP relay
type SMTPMailer struct {
	host    string
	from    string
	timeout time.Duration
	options []mail.Option
	deliver func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPMailer creates a mailer for host:port. Credentials are optional;
// STARTTLS is used when the relay offers it.
func NewSMTPMailer(host string, port int, username, password, from string, timeout time.Duration) *SMTPMailer {
	if timeout <= 0 {
		timeout = DefaultSMTPTimeout
	}

	options := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	m := &SMTPMailer{
		host:    host,
		from:    from,
		timeout: timeout,
		options: options,
	}
	m.deliver = m.dialAndSend
	return m
}

// Send writes msg as a plain-text e-mail. The delivery stops when ctx ends.
func (m *SMTPMailer) Send(ctx context.Context, msg *MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message, err := m.newMessage(msg)
	if err != nil {
		return err
	}
	if err := m.deliver(ctx, message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) newMessage(msg *MailMessage) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", m.from, err)
	}
	if err := message.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	message.Subject(msg.Subject)
	message.SetDate()
	message.SetMessageID()
	message.SetBodyString(mail.TypeTextPlain, msg.Body)
	return message, nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, message *mail.Msg) error {
	options := append([]mail.Option{mail.WithDialContextFunc(m.dialContext(ctx))}, m.options...)
	client, err := mail.NewClient(m.host, options...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, message)
}

// dialContext opens the relay connection with a deadline covering the whole
// session. Ending the delivery context expires the deadline at once, so a
// relay that stops answering cannot hold the caller.
func (m *SMTPMailer) dialContext(delivery context.Context) mail.DialContextFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		dialer := net.Dialer{Timeout: m.timeout}
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}

		deadline := time.Now().Add(m.timeout)
		if d, ok := delivery.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
		context.AfterFunc(delivery, func() {
			conn.SetDeadline(time.Now())
		})
		return conn, nil
	}
}

// LogMailer writes messages to the application log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that logs every message
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg *MailMessage) error {
	m.logger.Info("Mail delivered to log",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Uint("order_id", msg.OrderID),
		zap.String("body", msg.Body),
	)
	return nil
}
