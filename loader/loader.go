// Package loader extends a snapshot of an infinite-scroll page by repeatedly
// scrolling it and re-scanning until no new videos appear.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/pevans/ytexport/page"
	"github.com/pevans/ytexport/scanner"
	"github.com/pevans/ytexport/video"
	"go.uber.org/zap"
)

// Config holds configuration for the incremental loader.
type Config struct {
	// Maximum number of scroll-and-rescan iterations
	MaxScrolls int
	// Wait after each scroll so lazily rendered content can appear
	SettleDelay time.Duration
}

// DefaultConfig returns the default loader configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxScrolls:  10,
		SettleDelay: 2 * time.Second,
	}
}

// Loader drives the scroll-and-rescan loop.
type Loader struct {
	scanner *scanner.Scanner
	config  *Config
	logger  *zap.Logger
}

// Result is the outcome of a load. Snapshot is the last scan taken.
type Result struct {
	Snapshot video.Snapshot
	Scrolls  int
	Scans    int
}

// New creates a loader. A nil config uses DefaultConfig and a nil logger
// disables logging.
func New(s *scanner.Scanner, config *Config, logger *zap.Logger) *Loader {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		scanner: s,
		config:  config,
		logger:  logger,
	}
}

// LoadMore scrolls p to its bottom, waits for the settle delay and re-scans,
// starting from current. It stops as soon as an iteration does not grow the
// record count, or after MaxScrolls iterations. A page that has run out of
// content and a page that stalled are treated the same.
func (l *Loader) LoadMore(ctx context.Context, p page.Page, current video.Snapshot) (*Result, error) {
	result := &Result{Snapshot: current}

	for result.Scrolls < l.config.MaxScrolls {
		before := result.Snapshot.VideoCount

		if err := p.ScrollToBottom(ctx); err != nil {
			return result, fmt.Errorf("failed to scroll page: %w", err)
		}
		result.Scrolls++

		if err := settle(ctx, l.config.SettleDelay); err != nil {
			return result, err
		}

		snap, err := l.scanner.ScanPage(ctx, p)
		if err != nil {
			return result, fmt.Errorf("failed to rescan page: %w", err)
		}
		result.Scans++
		result.Snapshot = snap

		l.logger.Debug("Loaded more videos",
			zap.Int("scroll", result.Scrolls),
			zap.Int("before", before),
			zap.Int("after", snap.VideoCount),
		)

		if snap.VideoCount <= before {
			break
		}
	}

	l.logger.Info("Finished loading more videos",
		zap.Int("scrolls", result.Scrolls),
		zap.Int("videos", result.Snapshot.VideoCount),
	)

	return result, nil
}

// settle waits for d or until ctx ends.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
