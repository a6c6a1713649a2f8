// Package agent is the page-side half of the exporter. It owns one rendered
// page and answers scan and extraction requests from the control surface.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/pevans/ytexport/loader"
	"github.com/pevans/ytexport/page"
	"github.com/pevans/ytexport/scanner"
	"github.com/pevans/ytexport/video"
	"go.uber.org/zap"
)

// Agent answers requests against a single page. Requests are handled one at a
// time; a retried request simply re-runs the scan.
type Agent struct {
	page    page.Page
	scanner *scanner.Scanner
	loader  *loader.Loader
	logger  *zap.Logger

	mu sync.Mutex

	lastMu sync.RWMutex
	last   video.Snapshot
}

// New creates an agent for the given page. A nil logger disables logging.
func New(p page.Page, s *scanner.Scanner, l *loader.Loader, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		page:    p,
		scanner: s,
		loader:  l,
		logger:  logger,
		last:    video.NewSnapshot(video.PageUnknown, nil),
	}
}

// Prime scans the page once so the agent starts with a classification and a
// record set before the first request arrives.
func (a *Agent) Prime(ctx context.Context) (video.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, err := a.scan(ctx)
	if err != nil {
		return video.Snapshot{}, err
	}
	a.logger.Info("Page analyzed",
		zap.String("page_type", string(snap.PageType)),
		zap.Int("videos", snap.VideoCount),
	)
	return snap.Clone(), nil
}

// Address returns the current address of the page.
func (a *Agent) Address(ctx context.Context) (string, error) {
	return a.page.Address(ctx)
}

// Last returns a copy of the most recent snapshot. It does not wait for a
// request in progress.
func (a *Agent) Last() video.Snapshot {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	return a.last.Clone()
}

func (a *Agent) remember(snap video.Snapshot) {
	a.lastMu.Lock()
	a.last = snap
	a.lastMu.Unlock()
}

// Handle answers one request. Failures are reported in the response, never
// as a Go error, so every request gets exactly one answer.
func (a *Agent) Handle(ctx context.Context, req Request) Response {
	a.mu.Lock()
	defer a.mu.Unlock()

	log := a.logger.With(
		zap.String("request_id", req.ID.String()),
		zap.String("action", req.Action),
	)

	switch req.Action {
	case ActionGetPageInfo:
		snap, err := a.scan(ctx)
		if err != nil {
			log.Error("Page info failed", zap.Error(err))
			return failure(req.ID, err)
		}
		log.Debug("Page info", zap.Int("videos", snap.VideoCount))
		return success(req.ID, snap)

	case ActionExtractAllVideos:
		opts := video.DefaultOptions()
		if req.Options != nil {
			opts = *req.Options
		}
		records, err := a.extractAll(ctx, opts)
		if err != nil {
			log.Error("Extraction failed", zap.Error(err))
			return failure(req.ID, err)
		}
		log.Info("Extraction complete", zap.Int("videos", len(records)))
		return success(req.ID, records)

	default:
		log.Warn("Unknown action")
		return failure(req.ID, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action))
	}
}

// extractAll re-scans the page and, on paginated pages when requested, keeps
// scrolling until the record count plateaus.
func (a *Agent) extractAll(ctx context.Context, opts video.Options) ([]video.Record, error) {
	snap, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}

	if opts.ScrollToLoadMore && snap.PageType.Paginated() {
		result, err := a.loader.LoadMore(ctx, a.page, snap)
		if err != nil {
			return nil, fmt.Errorf("failed to load more videos: %w", err)
		}
		a.remember(result.Snapshot)
		snap = result.Snapshot
	}

	return snap.Clone().Videos, nil
}

// scan takes a fresh snapshot and remembers it. Callers hold a.mu.
func (a *Agent) scan(ctx context.Context) (video.Snapshot, error) {
	snap, err := a.scanner.ScanPage(ctx, a.page)
	if err != nil {
		return video.Snapshot{}, err
	}
	a.remember(snap)
	return snap, nil
}
