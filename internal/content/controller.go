package content

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/detector"
	"github.com/mikey/linkedin-prioritizer/internal/sorter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMessagingPath is the path prefix of the messaging pages
const DefaultMessagingPath = "/messaging"

// Options configures a Controller
type Options struct {
	Mode          core.Mode
	Method        core.Method
	MessagingPath string
	Debounce      time.Duration
}

// Controller drives one browser page: it scrapes on change, analyzes in the
// current session and keeps the sorted view and indicators up to date.
type Controller struct {
	page     Page
	analyzer Analyzer
	opts     Options
	detector *detector.Detector
	logger   *zap.Logger

	mu      sync.Mutex
	session *Session
	base    context.Context
	wg      sync.WaitGroup
}

// NewController creates a new page controller
func NewController(page Page, analyzer Analyzer, opts Options, logger *zap.Logger) *Controller {
	if opts.MessagingPath == "" {
		opts.MessagingPath = DefaultMessagingPath
	}
	if opts.Method == "" {
		opts.Method = core.MethodRule
	}
	c := &Controller{
		page:     page,
		analyzer: analyzer,
		opts:     opts,
		logger:   logger,
		base:     context.Background(),
	}
	c.detector = detector.New(opts.Debounce, c.handleChange, logger)
	return c
}

// Detector returns the change detector fed by the page
func (c *Controller) Detector() *detector.Detector {
	return c.detector
}

// Run watches the page until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()

	if u, err := c.page.URL(ctx); err != nil {
		c.logger.Warn("Failed to read initial page URL", zap.Error(err))
	} else {
		c.detector.ObserveURL(u)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.detector.Run(gctx)
	})
	g.Go(func() error {
		return c.page.Watch(gctx, c.detector)
	})

	err := g.Wait()

	c.mu.Lock()
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
	c.mu.Unlock()
	c.wg.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Session returns the current page session, or nil before the first navigation
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) handleChange(ctx context.Context, change detector.Change) {
	s := c.Session()
	if change.Navigated || s == nil {
		s = c.startSession(change.URL)
	}
	if !c.isMessaging(s.URL) {
		c.logger.Debug("Not a messaging page, skipping", zap.String("url", s.URL))
		return
	}

	messages, err := c.page.ScrapeMessages(s.Context())
	if err != nil {
		c.logger.Warn("Failed to scrape messages", zap.String("session", s.ID), zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}

	actx, cancel := s.beginAnalysis()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.analyze(core.WithSessionID(actx, s.ID), s, messages)
	}()
}

func (c *Controller) startSession(u string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Close()
		c.logger.Debug("Disposed page session", zap.String("session", c.session.ID))
	}
	engine := sorter.NewEngine(c.page, c.analyzer, c.detector, c.opts.Mode, c.logger)
	c.session = newSession(c.base, u, engine)
	c.logger.Info("Started page session", zap.String("session", c.session.ID), zap.String("url", u))
	return c.session
}

func (c *Controller) analyze(ctx context.Context, s *Session, messages []core.Message) {
	categorized, err := c.analyzer.AnalyzeMessages(ctx, messages, c.opts.Method)
	if err != nil {
		c.logger.Debug("Analysis discarded", zap.String("session", s.ID), zap.Error(err))
		return
	}
	if ctx.Err() != nil || c.Session() != s {
		c.logger.Debug("Discarding analysis for stale session", zap.String("session", s.ID))
		return
	}

	var markErr error
	c.detector.Guard(func() {
		markErr = c.page.MarkPriorities(ctx, categorized)
	})
	if markErr != nil {
		c.logger.Warn("Failed to mark priorities", zap.Error(markErr))
	}

	if err := s.Engine.ApplyIncrementalSort(ctx); err != nil {
		c.logger.Warn("Failed to apply incremental sort", zap.Error(err))
	}
}

func (c *Controller) isMessaging(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, c.opts.MessagingPath)
}

// ToggleSort sorts or restores the list of the current session
func (c *Controller) ToggleSort(ctx context.Context) (bool, error) {
	s := c.Session()
	if s == nil {
		return false, nil
	}
	return s.Engine.Toggle(ctx)
}

// State reports the sort state of the current session
func (c *Controller) State() sorter.State {
	s := c.Session()
	if s == nil {
		return sorter.State{}
	}
	return s.Engine.State()
}

// SendAutomatedResponse sends text to the conversation at link. Failures are
// reported in the result rather than returned.
func (c *Controller) SendAutomatedResponse(ctx context.Context, link, text string) core.SendResult {
	if strings.TrimSpace(link) == "" {
		return core.SendResult{Success: false, Reason: "missing conversation link"}
	}
	if strings.TrimSpace(text) == "" {
		return core.SendResult{Success: false, Reason: "empty response text"}
	}

	var (
		result core.SendResult
		err    error
	)
	c.detector.Guard(func() {
		result, err = c.page.SendResponse(ctx, link, text)
	})
	if err != nil {
		c.logger.Error("Failed to send automated response", zap.String("link", link), zap.Error(err))
		return core.SendResult{Success: false, Error: err.Error()}
	}
	return result
}
