package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// SMTPOptions represents the relay settings of an SMTPNotifier
type SMTPOptions struct {
	Address  string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	StartTLS bool
	Timeout  time.Duration

	// TLSConfig replaces the STARTTLS client settings, nil verifies the
	// certificate against Address
	TLSConfig *tls.Config
}

// SMTPNotifier mails reply drafts through an SMTP relay
type SMTPNotifier struct {
	opts     SMTPOptions
	hostname string
	logger   *zap.Logger
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(opts SMTPOptions, logger *zap.Logger) (*SMTPNotifier, error) {
	if opts.Address == "" {
		return nil, errors.New("smtp address is required")
	}
	if opts.From == "" {
		return nil, errors.New("smtp sender is required")
	}
	if len(opts.To) == 0 {
		return nil, errors.New("at least one smtp recipient is required")
	}
	if opts.Port == 0 {
		opts.Port = 25
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	return &SMTPNotifier{
		opts:     opts,
		hostname: hostname,
		logger:   logger,
	}, nil
}

// Notify delivers the draft as a plain-text mail to every configured recipient
func (n *SMTPNotifier) Notify(ctx context.Context, draft *core.ReplyDraft) error {
	addr := net.JoinHostPort(n.opts.Address, strconv.Itoa(n.opts.Port))

	dialer := net.Dialer{Timeout: n.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	deadline := time.Now().Add(n.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	var c *smtp.Client
	if n.opts.StartTLS {
		// The client closes conn itself when the upgrade fails
		c, err = smtp.NewClientStartTLS(conn, n.tlsConfig())
		if err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	} else {
		c = smtp.NewClient(conn)
	}
	defer c.Close()

	// STARTTLS resets the session, the upgraded channel needs its own EHLO
	if err := c.Hello(n.hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if n.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", n.opts.Username, n.opts.Password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(n.opts.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, recipient := range n.opts.To {
		if err := c.Rcpt(recipient, nil); err != nil {
			n.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(n.buildMessage(draft)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Warn("QUIT command failed", zap.Error(err))
	}

	n.logger.Info("Reply draft mailed",
		zap.Int("review_id", draft.Review.ID),
		zap.Int("recipients", accepted))
	return nil
}

func (n *SMTPNotifier) tlsConfig() *tls.Config {
	if n.opts.TLSConfig != nil {
		return n.opts.TLSConfig
	}
	return &tls.Config{ServerName: n.opts.Address}
}

func (n *SMTPNotifier) buildMessage(draft *core.ReplyDraft) []byte {
	var buf bytes.Buffer

	headers := []struct{ name, value string }{
		{"From", n.opts.From},
		{"To", strings.Join(n.opts.To, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", Subject(draft))},
		{"Date", generatedAt(draft).Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
		{"Content-Transfer-Encoding", "8bit"},
		{"X-Review-Category", string(draft.Review.Category)},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.name, h.value)
	}
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(Body(draft), "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return buf.Bytes()
}
