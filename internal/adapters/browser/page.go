package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/mikey/linkedin-prioritizer/internal/content"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/sorter"
	"go.uber.org/zap"
)

// DefaultStartURL is opened when no messaging tab is already present
const DefaultStartURL = "https://www.linkedin.com/messaging/"

const sendTimeout = 30 * time.Second

// Page drives a LinkedIn messaging tab through the Chrome DevTools protocol
type Page struct {
	browser        *rod.Browser
	page           *rod.Page
	owned          bool
	identityLength int
	pollInterval   time.Duration
	logger         *zap.Logger
}

var _ content.Page = (*Page)(nil)

// Connect attaches to the browser at cfg.ControlURL, or launches one when it is empty,
// and picks the messaging tab to drive
func Connect(ctx context.Context, cfg config.BrowserConfig, identityLength int, logger *zap.Logger) (*Page, error) {
	controlURL := cfg.ControlURL
	owned := false
	if controlURL == "" {
		u, err := launcher.New().Headless(cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
		owned = true
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	startURL := cfg.StartURL
	if startURL == "" {
		startURL = DefaultStartURL
	}

	page, err := findMessagingTab(b)
	if err != nil {
		logger.Warn("Failed to list browser tabs", zap.Error(err))
	}
	if page == nil {
		page, err = b.Page(proto.TargetCreateTarget{URL: startURL})
		if err != nil {
			if owned {
				_ = b.Close()
			}
			return nil, fmt.Errorf("failed to open messaging tab: %w", err)
		}
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if identityLength <= 0 {
		identityLength = core.DefaultIdentityLength
	}

	logger.Info("Connected to browser",
		zap.String("control_url", controlURL),
		zap.Bool("launched", owned))

	return &Page{
		browser:        b,
		page:           page,
		owned:          owned,
		identityLength: identityLength,
		pollInterval:   cfg.PollInterval,
		logger:         logger,
	}, nil
}

func findMessagingTab(b *rod.Browser) (*rod.Page, error) {
	pages, err := b.Pages()
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.Contains(info.URL, "linkedin.com"+content.DefaultMessagingPath) {
			return p, nil
		}
	}
	return nil, nil
}

// Close releases the browser if this process launched it
func (p *Page) Close() error {
	if p.owned {
		return p.browser.Close()
	}
	return nil
}

// URL implements content.Page
func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// eval runs a script function with args and decodes its JSON result into out.
// It reports false when the script returned null.
func (p *Page) eval(ctx context.Context, out any, js string, args ...any) (bool, error) {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      js,
		JSArgs:  args,
		ByValue: true,
	})
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return false, err
	}
	if string(raw) == "null" {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	return true, json.Unmarshal(raw, out)
}

// listEntry is one list child as reported by itemsScript
type listEntry struct {
	Ref     string `json:"ref"`
	Control bool   `json:"control"`
	Sender  string `json:"sender"`
	Preview string `json:"preview"`
}

// Items implements sorter.Container
func (p *Page) Items(ctx context.Context) ([]sorter.Item, error) {
	var entries []listEntry
	found, err := p.eval(ctx, &entries, itemsScript, listSelector, itemSelector, controlID, senderSelector, previewSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read message list: %w", err)
	}
	if !found {
		return nil, sorter.ErrContainerNotFound
	}
	return toItems(entries, p.identityLength), nil
}

func toItems(entries []listEntry, identityLength int) []sorter.Item {
	items := make([]sorter.Item, len(entries))
	for i, e := range entries {
		items[i] = sorter.Item{Ref: e.Ref, Control: e.Control}
		if !e.Control {
			items[i].Key = core.Identity(e.Sender, e.Preview, identityLength)
		}
	}
	return items
}

// Reorder implements sorter.Container
func (p *Page) Reorder(ctx context.Context, items []sorter.Item) error {
	refs := make([]string, 0, len(items))
	for _, it := range items {
		if ref, ok := it.Ref.(string); ok && !it.Control {
			refs = append(refs, ref)
		}
	}
	found, err := p.eval(ctx, nil, reorderScript, listSelector, controlID, refs)
	if err != nil {
		return fmt.Errorf("failed to reorder message list: %w", err)
	}
	if !found {
		return sorter.ErrContainerNotFound
	}
	return nil
}

// ScrapeMessages implements content.Page
func (p *Page) ScrapeMessages(ctx context.Context) ([]core.Message, error) {
	var messages []core.Message
	if _, err := p.eval(ctx, &messages, scrapeScript, cardSelector, senderSelector, previewSelector, timestampSelector); err != nil {
		return nil, fmt.Errorf("failed to scrape messages: %w", err)
	}
	for i := range messages {
		if strings.TrimSpace(messages[i].Sender) == "" {
			messages[i].Sender = core.UnknownSender
		}
		messages[i].Priority = core.PriorityUnassigned
	}
	p.logger.Debug("Scraped messages", zap.Int("count", len(messages)))
	return messages, nil
}

// MarkPriorities implements content.Page
func (p *Page) MarkPriorities(ctx context.Context, categorized core.Categorization) error {
	messages, err := p.ScrapeMessages(ctx)
	if err != nil {
		return err
	}
	flags := highFlags(messages, categorized, p.identityLength)
	if _, err := p.eval(ctx, nil, markScript, cardSelector, senderSelector, flags); err != nil {
		return fmt.Errorf("failed to mark priorities: %w", err)
	}
	return nil
}

func highFlags(messages []core.Message, categorized core.Categorization, identityLength int) []bool {
	high := make(map[string]bool, len(categorized[core.PriorityHigh]))
	for _, id := range categorized[core.PriorityHigh] {
		high[id] = true
	}
	flags := make([]bool, len(messages))
	for i := range messages {
		flags[i] = high[core.Identity(messages[i].Sender, messages[i].Preview, identityLength)]
	}
	return flags
}

// SendResponse implements content.Page. The conversation opens in its own tab so the
// watched page never navigates.
func (p *Page) SendResponse(ctx context.Context, link, text string) (core.SendResult, error) {
	current, err := p.URL(ctx)
	if err != nil {
		return core.SendResult{}, err
	}
	target, err := resolveLink(current, link)
	if err != nil {
		return core.SendResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	tab, err := p.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return core.SendResult{}, fmt.Errorf("failed to open conversation: %w", err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			p.logger.Warn("Failed to close conversation tab", zap.Error(err))
		}
	}()

	if err := tab.WaitLoad(); err != nil {
		return core.SendResult{}, fmt.Errorf("conversation did not load: %w", err)
	}
	box, err := tab.Element(messageBoxSelector)
	if err != nil {
		return core.SendResult{}, fmt.Errorf("message box not found: %w", err)
	}
	if err := box.Input(text); err != nil {
		return core.SendResult{}, fmt.Errorf("failed to type reply: %w", err)
	}
	button, err := tab.Element(sendButtonSelector)
	if err != nil {
		return core.SendResult{}, fmt.Errorf("send button not found: %w", err)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return core.SendResult{}, fmt.Errorf("failed to send reply: %w", err)
	}

	p.logger.Info("Sent automated response", zap.String("link", link))
	return core.SendResult{Success: true}, nil
}

// resolveLink makes a card href absolute against the page it was scraped from
func resolveLink(base, link string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	l, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("invalid message link: %w", err)
	}
	resolved := b.ResolveReference(l)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported message link scheme %q", resolved.Scheme)
	}
	return resolved.String(), nil
}

type pollResult struct {
	Mutations int    `json:"mutations"`
	URL       string `json:"url"`
	Installed bool   `json:"installed"`
}

// Watch implements content.Page: navigations come from page events, list
// mutations from the injected observer's counter polled every interval.
func (p *Page) Watch(ctx context.Context, sink content.Sink) error {
	if _, err := p.eval(ctx, nil, observeScript); err != nil {
		p.logger.Warn("Failed to install mutation observer", zap.Error(err))
	}

	wait := p.page.Context(ctx).EachEvent(
		func(ev *proto.PageFrameNavigated) {
			if ev.Frame != nil && ev.Frame.ParentID == "" {
				sink.ObserveURL(ev.Frame.URL)
			}
		},
		func(ev *proto.PageNavigatedWithinDocument) {
			if ev.FrameID == p.page.FrameID {
				sink.ObserveURL(ev.URL)
			}
		},
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()
	defer func() { <-done }()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		var res pollResult
		if _, err := p.eval(ctx, &res, pollScript); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Debug("Mutation poll failed", zap.Error(err))
			continue
		}
		if !res.Installed {
			if _, err := p.eval(ctx, nil, observeScript); err != nil {
				p.logger.Debug("Failed to reinstall mutation observer", zap.Error(err))
			}
		}
		if res.URL != "" {
			sink.ObserveURL(res.URL)
		}
		if res.Mutations > 0 {
			sink.NotifyMutations(res.Mutations)
		}
	}
}
