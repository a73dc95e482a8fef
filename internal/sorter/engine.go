package sorter

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// ErrContainerNotFound is returned by a Container whose list is not on the page
var ErrContainerNotFound = errors.New("message list container not found")

// unseenIndex places items that were not present at sort time after every real one
const unseenIndex = int(^uint(0) >> 1)

// Item is one child of the message list
type Item struct {
	// Ref is the adapter's handle for the element and must be comparable
	Ref any
	// Key is the conversation identity; empty for control elements
	Key string
	// Control marks non-message elements that stay at the top of the list
	Control bool
}

// Container is the live, mutable message list
type Container interface {
	// Items returns the current children in page order
	Items(ctx context.Context) ([]Item, error)

	// Reorder moves the children into the given order in one visual update
	Reorder(ctx context.Context, items []Item) error
}

// Lookup provides the latest persisted categorization
type Lookup interface {
	LoadCategorization(ctx context.Context) (core.Categorization, error)
}

// Guard suspends change observation around a reorder
type Guard interface {
	Suspend()
	Resume()
}

// State is the sort state reported to the popup
type State struct {
	Sorted bool `json:"isSorted"`
	Count  int  `json:"messageCount"`
}

// Engine sorts a message list by priority and restores it afterwards.
// It is the only writer of the list order.
type Engine struct {
	mu        sync.Mutex
	container Container
	lookup    Lookup
	guard     Guard
	mode      core.Mode
	logger    *zap.Logger

	sorted        bool
	originalOrder map[string][]int
	lastCount     int
}

// NewEngine creates a new sort engine in the Unsorted state. guard may be nil.
func NewEngine(container Container, lookup Lookup, guard Guard, mode core.Mode, logger *zap.Logger) *Engine {
	return &Engine{
		container: container,
		lookup:    lookup,
		guard:     guard,
		mode:      mode,
		logger:    logger,
	}
}

// SortMessages snapshots the current order and sorts by priority. No-op while Sorted.
func (e *Engine) SortMessages(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sorted {
		return nil
	}

	items, ok, err := e.items(ctx)
	if !ok {
		return err
	}

	original := make(map[string][]int)
	for i, it := range items {
		if !it.Control {
			original[it.Key] = append(original[it.Key], i)
		}
	}

	if err := e.reorder(ctx, e.byPriority(ctx, items)); err != nil {
		return err
	}

	e.originalOrder = original
	e.sorted = true
	e.logger.Info("Sorted messages by priority", zap.Int("count", len(items)))
	return nil
}

// ApplyIncrementalSort re-sorts the current items, keeping the original snapshot. No-op while Unsorted.
func (e *Engine) ApplyIncrementalSort(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sorted {
		return nil
	}

	items, ok, err := e.items(ctx)
	if !ok {
		return err
	}

	sorted := e.byPriority(ctx, items)
	if sameOrder(items, sorted) {
		return nil
	}
	if err := e.reorder(ctx, sorted); err != nil {
		return err
	}
	e.logger.Debug("Applied incremental sort", zap.Int("count", len(items)))
	return nil
}

// RestoreOriginalOrder puts the items back in their pre-sort order and ends the session. No-op while Unsorted.
func (e *Engine) RestoreOriginalOrder(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sorted {
		return nil
	}

	items, ok, err := e.items(ctx)
	if !ok {
		return err
	}

	// collided identities hand out their recorded indices in current order
	remaining := make(map[string][]int, len(e.originalOrder))
	for k, v := range e.originalOrder {
		remaining[k] = v
	}
	index := make([]int, len(items))
	for i, it := range items {
		if it.Control {
			continue
		}
		if idx := remaining[it.Key]; len(idx) > 0 {
			index[i] = idx[0]
			remaining[it.Key] = idx[1:]
		} else {
			index[i] = unseenIndex
		}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := compareControl(items[a], items[b]); c != 0 {
			return c
		}
		return cmp.Compare(index[a], index[b])
	})

	restored := make([]Item, len(items))
	for i, j := range order {
		restored[i] = items[j]
	}
	if err := e.reorder(ctx, restored); err != nil {
		return err
	}

	e.sorted = false
	e.originalOrder = nil
	e.logger.Info("Restored original message order", zap.Int("count", len(items)))
	return nil
}

// Toggle sorts when Unsorted and restores when Sorted, returning the new state
func (e *Engine) Toggle(ctx context.Context) (bool, error) {
	e.mu.Lock()
	sorted := e.sorted
	e.mu.Unlock()

	var err error
	if sorted {
		err = e.RestoreOriginalOrder(ctx)
	} else {
		err = e.SortMessages(ctx)
	}
	return e.State().Sorted, err
}

// State reports whether the list is sorted and how many messages it last held
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{Sorted: e.sorted, Count: e.lastCount}
}

// items reads the container. A missing container is reported as !ok with a nil error.
func (e *Engine) items(ctx context.Context) ([]Item, bool, error) {
	items, err := e.container.Items(ctx)
	if errors.Is(err, ErrContainerNotFound) {
		e.logger.Debug("Message list not found, skipping")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	count := 0
	for _, it := range items {
		if !it.Control {
			count++
		}
	}
	e.lastCount = count
	return items, true, nil
}

// byPriority returns the items in priority-descending order, controls first, ties in scan order
func (e *Engine) byPriority(ctx context.Context, items []Item) []Item {
	categorized, err := e.lookup.LoadCategorization(ctx)
	if err != nil {
		e.logger.Warn("Failed to load categorization, sorting without priorities", zap.Error(err))
		categorized = core.Categorization{}
	}
	weights := categorized.Weights(e.mode)

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b Item) int {
		if c := compareControl(a, b); c != 0 {
			return c
		}
		return cmp.Compare(weights[b.Key], weights[a.Key])
	})
	return out
}

func (e *Engine) reorder(ctx context.Context, items []Item) error {
	if e.guard != nil {
		e.guard.Suspend()
		defer e.guard.Resume()
	}
	err := e.container.Reorder(ctx, items)
	if errors.Is(err, ErrContainerNotFound) {
		e.logger.Debug("Message list disappeared before reorder")
		return nil
	}
	return err
}

func compareControl(a, b Item) int {
	switch {
	case a.Control && !b.Control:
		return -1
	case !a.Control && b.Control:
		return 1
	}
	return 0
}

func sameOrder(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Ref != b[i].Ref || a[i].Key != b[i].Key {
			return false
		}
	}
	return true
}
