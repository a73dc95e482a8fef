package automation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// Date and time layouts used by the {date} and {time} placeholders
const (
	DateLayout = "Jan 2, 2006"
	TimeLayout = "15:04"
)

// bucketOrder is the order unresponded conversations are answered in
var bucketOrder = []core.Priority{core.PriorityHigh, core.PriorityMedium, core.PriorityLow, core.PriorityNotHigh}

// Responder sends a reply into a conversation
type Responder interface {
	SendAutomatedResponse(ctx context.Context, link, text string) core.SendResult
}

// Result summarises a ProcessUnresponded run
type Result struct {
	Processed int `json:"processed"`
	Success   int `json:"success"`
}

// Automator answers unresponded conversations with the per-bucket templates
type Automator struct {
	mu        sync.Mutex
	store     core.Store
	messages  *core.MessageLog
	prefs     core.PreferenceRepository
	responder Responder
	now       func() time.Time
	logger    *zap.Logger
}

// NewAutomator creates a new Automator
// messages must be the log shared with the analysis service.
func NewAutomator(store core.Store, messages *core.MessageLog, prefs core.PreferenceRepository, responder Responder, logger *zap.Logger) *Automator {
	return &Automator{
		store:     store,
		messages:  messages,
		prefs:     prefs,
		responder: responder,
		now:       time.Now,
		logger:    logger,
	}
}

// Personalize fills the placeholders of a template for one message:
// {sender} is the first name, {fullname} the whole sender, {date} and {time} the current moment.
func Personalize(template string, m core.Message, now time.Time) string {
	fields := strings.Fields(m.Sender)
	first := ""
	if len(fields) > 0 {
		first = fields[0]
	}
	return strings.NewReplacer(
		"{sender}", first,
		"{fullname}", m.Sender,
		"{date}", now.Format(DateLayout),
		"{time}", now.Format(TimeLayout),
	).Replace(template)
}

// Settings returns the persisted automation settings; absent settings are disabled
func (a *Automator) Settings(ctx context.Context) (core.AutomationSettings, error) {
	prefs, err := a.prefs.Load(ctx)
	if err != nil {
		return core.AutomationSettings{}, err
	}
	if prefs.AutomationSettings == nil {
		return core.AutomationSettings{}, nil
	}
	return *prefs.AutomationSettings, nil
}

// ProcessMessage sends the template for the message's bucket and reports whether a reply went out
func (a *Automator) ProcessMessage(ctx context.Context, settings core.AutomationSettings, m core.Message) bool {
	if !settings.Enabled {
		return false
	}
	priority := m.Priority
	if priority == "" || priority == core.PriorityUnassigned {
		priority = core.PriorityLow
	}
	template := settings.Templates[priority]
	if strings.TrimSpace(template) == "" {
		return false
	}

	res := a.responder.SendAutomatedResponse(ctx, m.Link, Personalize(template, m, a.now()))
	if !res.Success {
		a.logger.Warn("Automated response not sent",
			zap.String("id", m.ID),
			zap.String("reason", res.Reason),
			zap.String("error", res.Error))
	}
	return res.Success
}

// ProcessUnresponded answers every categorized conversation that has not been
// responded to, highest bucket first, and records the ones that were answered.
func (a *Automator) ProcessUnresponded(ctx context.Context) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	settings, err := a.Settings(ctx)
	if err != nil {
		return Result{}, err
	}
	if !settings.Enabled {
		return Result{}, nil
	}

	var messages []core.Message
	if _, err := core.GetJSON(ctx, a.store, core.KeyMessages, &messages); err != nil {
		return Result{}, err
	}
	categorized := core.Categorization{}
	if _, err := core.GetJSON(ctx, a.store, core.KeyCategorized, &categorized); err != nil {
		return Result{}, err
	}

	byID := make(map[string]core.Message, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}

	var result Result
	answered := make(map[string]bool)
	for _, bucket := range bucketOrder {
		for _, id := range categorized[bucket] {
			m, ok := byID[id]
			if !ok || m.Responded || answered[id] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Processed++
			if a.ProcessMessage(ctx, settings, m) {
				result.Success++
				answered[id] = true
			}
		}
	}

	if len(answered) > 0 {
		if err := a.messages.MarkResponded(ctx, answered); err != nil {
			return result, err
		}
	}

	a.logger.Info("Processed unresponded messages",
		zap.Int("processed", result.Processed),
		zap.Int("success", result.Success))
	return result, nil
}
