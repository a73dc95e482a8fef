package notify

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mailbox is a go-smtp backend that keeps every delivered message
type mailbox struct {
	mu   sync.Mutex
	mail []delivery
}

type delivery struct {
	from string
	to   []string
	data string
}

func (b *mailbox) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{box: b}, nil
}

func (b *mailbox) deliveries() []delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]delivery(nil), b.mail...)
}

type session struct {
	box  *mailbox
	from string
	to   []string
}

func (s *session) Reset()        { s.from, s.to = "", nil }
func (s *session) Logout() error { return nil }

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.box.mu.Lock()
	s.box.mail = append(s.box.mail, delivery{from: s.from, to: s.to, data: string(data)})
	s.box.mu.Unlock()
	return nil
}

func startServer(t *testing.T) (string, *mailbox) {
	t.Helper()
	box := &mailbox{}
	srv := smtp.NewServer(box)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { srv.Close() })
	return l.Addr().String(), box
}

func event(messages ...core.Message) *core.AnalysisEvent {
	return &core.AnalysisEvent{Method: core.MethodRule, Messages: messages, AnalyzedAt: time.Now()}
}

func TestSMTPNotifier_AlertsOncePerConversation(t *testing.T) {
	addr, box := startServer(t)
	n := NewSMTPNotifier(addr, "", "", "prioritizer@example.com", []string{"me@example.com"}, zaptest.NewLogger(t))
	ctx := context.Background()

	jane := core.Message{ID: "jane", Sender: "Jane Doe", Preview: "Offer letter attached", Priority: core.PriorityHigh, Link: "/messaging/thread/1"}
	bob := core.Message{ID: "bob", Sender: "Bob", Preview: "hello", Priority: core.PriorityLow}

	require.NoError(t, n.MessagesAnalyzed(ctx, event(jane, bob)))
	require.NoError(t, n.MessagesAnalyzed(ctx, event(jane, bob)))

	mail := box.deliveries()
	require.Len(t, mail, 1)
	assert.Equal(t, "prioritizer@example.com", mail[0].from)
	assert.Equal(t, []string{"me@example.com"}, mail[0].to)
	assert.Contains(t, mail[0].data, "Subject: 1 new high priority")
	assert.Contains(t, mail[0].data, "Jane Doe")
	assert.Contains(t, mail[0].data, "/messaging/thread/1")
	assert.NotContains(t, mail[0].data, "Bob")
}

func TestSMTPNotifier_NoRecipients(t *testing.T) {
	n := NewSMTPNotifier("127.0.0.1:1", "", "", "a@example.com", nil, zaptest.NewLogger(t))
	assert.NoError(t, n.MessagesAnalyzed(context.Background(), event(core.Message{ID: "x", Priority: core.PriorityHigh})))
}

func TestSMTPNotifier_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	n := NewSMTPNotifier(addr, "", "", "a@example.com", []string{"b@example.com"}, zaptest.NewLogger(t))
	err = n.MessagesAnalyzed(context.Background(), event(core.Message{ID: "x", Priority: core.PriorityHigh}))
	assert.ErrorContains(t, err, "failed to connect")
}
