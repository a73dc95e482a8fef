package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// SMTPNotifier mails an alert when conversations become high priority
type SMTPNotifier struct {
	addr     string
	username string
	password string
	from     string
	to       []string
	timeout  time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	notified map[string]bool
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(addr, username, password, from string, to []string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		addr:     addr,
		username: username,
		password: password,
		from:     from,
		to:       to,
		timeout:  30 * time.Second,
		logger:   logger,
		notified: make(map[string]bool),
	}
}

// MessagesAnalyzed implements core.Notifier. Each conversation is alerted at most once.
func (n *SMTPNotifier) MessagesAnalyzed(ctx context.Context, event *core.AnalysisEvent) error {
	if len(n.to) == 0 {
		return nil
	}

	n.mu.Lock()
	var fresh []core.Message
	for _, m := range event.HighPriority() {
		if !n.notified[m.ID] {
			fresh = append(fresh, m)
		}
	}
	n.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}

	if err := n.send(ctx, n.compose(fresh, event.AnalyzedAt)); err != nil {
		return err
	}

	n.mu.Lock()
	for _, m := range fresh {
		n.notified[m.ID] = true
	}
	n.mu.Unlock()

	n.logger.Info("Sent high priority alert", zap.Int("conversations", len(fresh)))
	return nil
}

func (n *SMTPNotifier) compose(messages []core.Message, at time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.to, ", "))
	fmt.Fprintf(&b, "Subject: %d new high priority LinkedIn conversation(s)\r\n", len(messages))
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "%s (%s)\r\n  %s\r\n", m.Sender, m.Timestamp, m.Preview)
		if m.Link != "" {
			fmt.Fprintf(&b, "  %s\r\n", m.Link)
		}
		b.WriteString("\r\n")
	}
	return b.Bytes()
}

// send delivers one message over a fresh SMTP connection
func (n *SMTPNotifier) send(ctx context.Context, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(n.timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if n.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", n.username, n.password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}
	if err := c.Mail(n.from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, rcpt := range n.to {
		if err := c.Rcpt(rcpt, nil); err != nil {
			n.logger.Warn("RCPT TO failed for recipient", zap.String("recipient", rcpt), zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send alert data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}
