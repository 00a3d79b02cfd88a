// Package station is the host side of the scanning screen. It owns the
// package lines and exposes the put-in-pack extension point that
// pallet scanning plugs into.
package station

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"palletscan/internal/logging"
)

var (
	// ErrNotReady is returned by PutInPack before a handler is registered.
	ErrNotReady = errors.New("scanning station not ready")
	// ErrScanDisabled is returned for lines whose picking type disables pallet scanning.
	ErrScanDisabled = errors.New("pallet scanning disabled for line")
	// ErrDuplicateLine is returned when a record id is added twice.
	ErrDuplicateLine = errors.New("duplicate package line")
)

// PutInPackHandler is the pluggable put-in-pack strategy. The station calls
// it when the operator presses the line's scan control.
type PutInPackHandler interface {
	PutInPack(ctx context.Context, line *PackageLine) error
}

// PutInPackFunc adapts a function to PutInPackHandler.
type PutInPackFunc func(ctx context.Context, line *PackageLine) error

// PutInPack calls f.
func (f PutInPackFunc) PutInPack(ctx context.Context, line *PackageLine) error {
	return f(ctx, line)
}

// FeatureChecker reports whether pallet scanning is enabled for a record.
type FeatureChecker interface {
	PalletScanningEnabled(ctx context.Context, resID int64) (bool, error)
}

// Station holds the package lines and the registered handler.
type Station struct {
	mu       sync.RWMutex
	lines    []*PackageLine
	byID     map[int64]*PackageLine
	handler  PutInPackHandler
	onRender func(*PackageLine)

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates an empty station.
func New() *Station {
	return &Station{
		byID:  make(map[int64]*PackageLine),
		ready: make(chan struct{}),
	}
}

// AddLine adds a package line for the record id.
func (s *Station) AddLine(id int64, name string) (*PackageLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateLine, id)
	}
	line := NewPackageLine(id, name)
	line.setRenderHook(s.render)
	s.lines = append(s.lines, line)
	s.byID[id] = line
	return line, nil
}

// Lines returns the lines in insertion order.
func (s *Station) Lines() []*PackageLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*PackageLine(nil), s.lines...)
}

// Line looks up a line by record id.
func (s *Station) Line(id int64) (*PackageLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.byID[id]
	return l, ok
}

// OnRender sets the hook invoked when a line requests a re-render.
func (s *Station) OnRender(fn func(*PackageLine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRender = fn
}

func (s *Station) render(line *PackageLine) {
	s.mu.RLock()
	fn := s.onRender
	s.mu.RUnlock()
	if fn != nil {
		fn(line)
	}
}

// Register installs the put-in-pack handler, replacing any previous one.
func (s *Station) Register(h PutInPackHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
	logging.Station("put-in-pack handler registered: %T", h)
}

// PutInPack dispatches the operator's scan request for line.
func (s *Station) PutInPack(ctx context.Context, line *PackageLine) error {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()

	if h == nil {
		return ErrNotReady
	}
	if !line.ScanEnabled() {
		return fmt.Errorf("%w: %d", ErrScanDisabled, line.ID())
	}
	return h.PutInPack(ctx, line)
}

// featureCheckLimit caps concurrent feature-flag requests.
const featureCheckLimit = 4

// LoadFeatureFlags asks checker whether each line allows pallet scanning.
// Lines whose check fails stay enabled; the failures are returned joined.
func (s *Station) LoadFeatureFlags(ctx context.Context, checker FeatureChecker) error {
	lines := s.Lines()
	errs := make([]error, len(lines))

	var eg errgroup.Group
	eg.SetLimit(featureCheckLimit)
	for i, line := range lines {
		i, line := i, line
		eg.Go(func() error {
			enabled, err := checker.PalletScanningEnabled(ctx, line.ID())
			if err != nil {
				logging.Get(logging.CategoryStation).Warn("feature check for line %d failed: %v", line.ID(), err)
				errs[i] = err
				return nil
			}
			line.SetScanEnabled(enabled)
			logging.Station("line %d pallet scanning enabled=%v", line.ID(), enabled)
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}

// MarkReady signals that the lines are loaded and extensions may register.
func (s *Station) MarkReady() {
	s.readyOnce.Do(func() {
		close(s.ready)
		logging.Station("station ready with %d lines", len(s.Lines()))
	})
}

// Ready is closed once MarkReady has been called.
func (s *Station) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether MarkReady has been called.
func (s *Station) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// WhenReady blocks until the station is ready, then runs fn.
func (s *Station) WhenReady(ctx context.Context, fn func()) error {
	select {
	case <-s.ready:
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
