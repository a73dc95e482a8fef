package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/adapters/store"
	"github.com/mikey/linkedin-prioritizer/internal/automation"
	"github.com/mikey/linkedin-prioritizer/internal/classifier"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/prefs"
	"github.com/mikey/linkedin-prioritizer/internal/sorter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePage struct {
	sorted bool
}

func (p *fakePage) ToggleSort(ctx context.Context) (bool, error) {
	p.sorted = !p.sorted
	return p.sorted, nil
}

func (p *fakePage) State() sorter.State {
	return sorter.State{Sorted: p.sorted, Count: 3}
}

func (p *fakePage) SendAutomatedResponse(ctx context.Context, link, text string) core.SendResult {
	if link == "" {
		return core.SendResult{Reason: "missing conversation link"}
	}
	return core.SendResult{Success: true}
}

type fakeAutomation struct{}

func (fakeAutomation) ProcessUnresponded(ctx context.Context) (automation.Result, error) {
	return automation.Result{Processed: 2, Success: 1}, nil
}

func newTestServer(t *testing.T, page *fakePage) (*httptest.Server, *Broker) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	kv := store.NewMemoryStore(logger)
	rules := classifier.New(classifier.Options{Mode: core.ModeBinary, ImportantContacts: []string{"Jane Doe"}}, logger)
	broker := NewBroker(logger)
	svc := core.NewPrioritizerService(rules, nil, kv, prefs.NewStore(kv, logger), []core.Notifier{broker}, logger, 0)

	var pc *fakePage
	tr := NewHTTPTransport(svc, nil, fakeAutomation{}, broker, logger, "127.0.0.1:0")
	if page != nil {
		pc = page
		tr.page = pc
	}
	srv := httptest.NewServer(tr.Handler())
	t.Cleanup(srv.Close)
	return srv, broker
}

func post(t *testing.T, srv *httptest.Server, env Envelope, out any) int {
	t.Helper()
	body, err := json.Marshal(env)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/message", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHTTPTransport_AnalyzeAndContacts(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var analyzed AnalyzeResponse
	status := post(t, srv, Envelope{
		Action: ActionAnalyzeMessages,
		Messages: []core.Message{
			{Sender: "Jane Doe - Recruiter", Preview: "let's connect"},
			{Sender: "Bob", Preview: "hello"},
		},
	}, &analyzed)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, analyzed.Success)
	assert.Equal(t, []string{"Jane Doe - Recruiter-let's connect"}, analyzed.Categorized[core.PriorityHigh])
	assert.Equal(t, []string{"Bob-hello"}, analyzed.Categorized[core.PriorityNotHigh])

	var res SuccessResponse
	post(t, srv, Envelope{Action: ActionAddImportantContact, Contact: "Acme Corp"}, &res)
	assert.True(t, res.Success)
	post(t, srv, Envelope{Action: ActionAddImportantContact, Contact: "Acme Corp"}, &res)
	assert.False(t, res.Success)
	post(t, srv, Envelope{Action: ActionRemoveImportantContact, Contact: "Acme Corp"}, &res)
	assert.True(t, res.Success)

	var display MessagesResponse
	post(t, srv, Envelope{Action: ActionDisplayMessages, Tab: "high"}, &display)
	require.Len(t, display.Messages, 1)
	assert.Equal(t, "Jane Doe - Recruiter", display.Messages[0].Sender)
}

func TestHTTPTransport_PageActions(t *testing.T) {
	srv, _ := newTestServer(t, &fakePage{})

	var toggled ToggleResponse
	post(t, srv, Envelope{Action: ActionToggleSort}, &toggled)
	assert.Equal(t, ToggleResponse{Success: true, IsSorted: true}, toggled)

	var state sorter.State
	post(t, srv, Envelope{Action: ActionGetState}, &state)
	assert.Equal(t, sorter.State{Sorted: true, Count: 3}, state)

	var sent core.SendResult
	post(t, srv, Envelope{Action: ActionSendAutomatedResponse, MessageLink: "/messaging/thread/1", ResponseText: "Hi"}, &sent)
	assert.True(t, sent.Success)

	var result automation.Result
	post(t, srv, Envelope{Action: ActionProcessUnresponded}, &result)
	assert.Equal(t, automation.Result{Processed: 2, Success: 1}, result)
}

func TestHTTPTransport_Errors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusBadRequest, post(t, srv, Envelope{Action: "selfDestruct"}, &errResp))
	assert.Contains(t, errResp.Error, "selfDestruct")

	assert.Equal(t, http.StatusServiceUnavailable, post(t, srv, Envelope{Action: ActionToggleSort}, &errResp))

	resp, err := http.Post(srv.URL+"/api/message", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/message")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBroker_StreamsNotifications(t *testing.T) {
	srv, broker := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	var res AnalyzeResponse
	post(t, srv, Envelope{Action: ActionAnalyzeMessages, Messages: []core.Message{{Sender: "Bob", Preview: "urgent"}}}, &res)

	reader := bufio.NewReader(resp.Body)
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}

	var n struct {
		Action     string              `json:"action"`
		Categories core.Categorization `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &n))
	assert.Equal(t, ActionMessagesAnalyzed, n.Action)
	assert.Equal(t, []string{"Bob-urgent"}, n.Categories[core.PriorityHigh])
}

func TestBroker_NoSubscribers(t *testing.T) {
	broker := NewBroker(zaptest.NewLogger(t))
	assert.NoError(t, broker.MessagesAnalyzed(context.Background(), &core.AnalysisEvent{}))
}
