package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/ports"
	"go.uber.org/zap"
)

// maxRequestBytes bounds the size of one envelope
const maxRequestBytes = 4 << 20

// HTTPTransport serves the extension's message envelopes over HTTP
type HTTPTransport struct {
	prioritizer ports.Prioritizer
	page        ports.PageControl
	automation  ports.Automation
	broker      *Broker
	logger      *zap.Logger
	listenAddr  string
	server      *http.Server
	listener    net.Listener
}

// NewHTTPTransport creates a new HTTP transport. page and automation may be
// nil when no browser page is attached.
func NewHTTPTransport(
	prioritizer ports.Prioritizer,
	page ports.PageControl,
	automation ports.Automation,
	broker *Broker,
	logger *zap.Logger,
	listenAddr string,
) *HTTPTransport {
	return &HTTPTransport{
		prioritizer: prioritizer,
		page:        page,
		automation:  automation,
		broker:      broker,
		logger:      logger,
		listenAddr:  listenAddr,
	}
}

// Handler returns the routes of the transport
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/message", t.handleMessage)
	mux.Handle("GET /api/events", t.broker)
	return mux
}

// Start starts the HTTP transport
func (t *HTTPTransport) Start() error {
	l, err := net.Listen("tcp", t.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", t.listenAddr, err)
	}
	t.listener = l
	t.server = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	t.logger.Info("Message transport starting", zap.String("address", l.Addr().String()))

	go func() {
		if err := t.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (t *HTTPTransport) Addr() string {
	if t.listener == nil {
		return t.listenAddr
	}
	return t.listener.Addr().String()
}

// Stop stops the HTTP transport
func (t *HTTPTransport) Stop(ctx context.Context) error {
	if t.server == nil {
		return nil
	}
	return t.server.Shutdown(ctx)
}

func (t *HTTPTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed envelope: " + err.Error()})
		return
	}

	ctx := r.Context()
	t.logger.Debug("Received message", zap.String("action", env.Action))

	switch env.Action {
	case ActionAnalyzeMessages:
		categorized, err := t.prioritizer.AnalyzeMessages(ctx, env.Messages, core.ParseMethod(env.Method))
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, AnalyzeResponse{Success: true, Categorized: categorized})

	case ActionAddImportantContact:
		writeJSON(w, http.StatusOK, SuccessResponse{Success: t.prioritizer.AddImportantContact(ctx, env.Contact)})

	case ActionRemoveImportantContact:
		writeJSON(w, http.StatusOK, SuccessResponse{Success: t.prioritizer.RemoveImportantContact(ctx, env.Contact)})

	case ActionDisplayMessages:
		messages, err := t.prioritizer.Messages(ctx, env.Tab)
		if err != nil {
			t.logger.Warn("Failed to load messages", zap.Error(err))
			messages = nil
		}
		if messages == nil {
			messages = []core.Message{}
		}
		writeJSON(w, http.StatusOK, MessagesResponse{Messages: messages})

	case ActionToggleSort:
		if !t.requirePage(w) {
			return
		}
		sorted, err := t.page.ToggleSort(ctx)
		if err != nil {
			t.logger.Warn("Failed to toggle sort", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, ToggleResponse{Success: err == nil, IsSorted: sorted})

	case ActionGetState:
		if !t.requirePage(w) {
			return
		}
		writeJSON(w, http.StatusOK, t.page.State())

	case ActionSendAutomatedResponse:
		if !t.requirePage(w) {
			return
		}
		writeJSON(w, http.StatusOK, t.page.SendAutomatedResponse(ctx, env.MessageLink, env.ResponseText))

	case ActionProcessUnresponded:
		if t.automation == nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "automation unavailable"})
			return
		}
		result, err := t.automation.ProcessUnresponded(ctx)
		if err != nil {
			t.logger.Warn("Failed to process unresponded messages", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, result)

	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown action %q", env.Action)})
	}
}

func (t *HTTPTransport) requirePage(w http.ResponseWriter) bool {
	if t.page == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no page attached"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
