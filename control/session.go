// Package control is the control-side half of the exporter: it asks a page
// agent for a snapshot, previews it, requests a full extraction and writes
// the CSV export.
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pevans/ytexport/agent"
	"github.com/pevans/ytexport/csvexport"
	"github.com/pevans/ytexport/video"
	"go.uber.org/zap"
)

// ErrNotExtracted is returned when an export is attempted before a successful
// extraction.
var ErrNotExtracted = errors.New("extract videos before exporting")

// ErrNotOnSite is reported when the agent's page is not on the site.
var ErrNotOnSite = errors.New("active page is not on the site")

// StatusKind classifies the session's current status message.
type StatusKind string

const (
	StatusIdle      StatusKind = "idle"
	StatusNotOnSite StatusKind = "not-on-site"
	StatusFound     StatusKind = "found"
	StatusEmpty     StatusKind = "empty"
	StatusError     StatusKind = "error"
)

// Status is the user-facing outcome of the last session action.
type Status struct {
	Kind    StatusKind
	Message string
}

func (s Status) String() string {
	return s.Message
}

// Err converts a failing status into an error. Found, empty and idle
// statuses are not errors.
func (s Status) Err() error {
	switch s.Kind {
	case StatusNotOnSite:
		return fmt.Errorf("%w: %s", ErrNotOnSite, s.Message)
	case StatusError:
		return errors.New(s.Message)
	}
	return nil
}

// Config holds configuration for a control session.
type Config struct {
	Site video.Site
	// Wait before the first page info request so the agent can settle
	GraceDelay time.Duration
	// Wait before the single retry of a failed page info request
	RetryDelay time.Duration
	// Number of records shown in the preview
	PreviewSize int
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() *Config {
	return &Config{
		Site:        video.DefaultSite(),
		GraceDelay:  500 * time.Millisecond,
		RetryDelay:  1 * time.Second,
		PreviewSize: 5,
	}
}

// Session tracks one interaction with a page agent. It is not safe for
// concurrent use.
type Session struct {
	transport Transport
	config    *Config
	logger    *zap.Logger

	status    Status
	address   string
	pageInfo  *video.Snapshot
	extracted []video.Record
	options   video.Options
	opened    bool
	ready     bool
}

// NewSession creates a session. A nil config uses DefaultConfig and a nil
// logger disables logging.
func NewSession(t Transport, config *Config, logger *zap.Logger) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		transport: t,
		config:    config,
		logger:    logger,
		status:    Status{Kind: StatusIdle},
		options:   video.DefaultOptions(),
	}
}

// Open checks that the agent's page belongs to the site and fetches its
// snapshot, retrying once after RetryDelay. Calling Open again refreshes the
// session.
func (s *Session) Open(ctx context.Context) Status {
	s.address = ""
	s.pageInfo = nil
	s.extracted = nil
	s.opened = false
	s.ready = false

	address, err := s.transport.ActiveAddress(ctx)
	if err != nil {
		s.logger.Error("Failed to query active page", zap.Error(err))
		return s.setStatus(StatusError, "Error analyzing page. Try refreshing the page.")
	}
	s.address = address

	if !s.config.Site.Owns(address) {
		s.logger.Info("Active page is not on the site", zap.String("address", address))
		return s.setStatus(StatusNotOnSite, fmt.Sprintf("Please navigate to a %s page first", s.config.Site.Host()))
	}

	if err := wait(ctx, s.config.GraceDelay); err != nil {
		return s.setStatus(StatusError, "Error analyzing page. Try refreshing the page.")
	}

	snap, err := s.requestPageInfo(ctx)
	if err != nil {
		s.logger.Warn("Page info failed, retrying", zap.Error(err))

		if err := wait(ctx, s.config.RetryDelay); err != nil {
			return s.setStatus(StatusError, "Error analyzing page. Try refreshing the page.")
		}

		snap, err = s.requestPageInfo(ctx)
		if err != nil {
			s.logger.Error("Page info failed after retry", zap.Error(err))
			return s.setStatus(StatusError, "Could not analyze this page. Try refreshing and reopening.")
		}
	}

	s.pageInfo = &snap

	if snap.VideoCount == 0 {
		return s.setStatus(StatusEmpty, "No videos found on this page")
	}
	s.opened = true
	return s.setStatus(StatusFound, fmt.Sprintf("Found %d videos on this %s page", snap.VideoCount, snap.PageType))
}

// Extract requests every video on the page with the given options. It needs
// an Open that found videos, and Export becomes available only when this
// succeeds.
func (s *Session) Extract(ctx context.Context, opts video.Options) Status {
	s.ready = false

	if !s.opened {
		if s.address != "" && !s.config.Site.Owns(s.address) {
			return s.setStatus(StatusNotOnSite, fmt.Sprintf("Please navigate to a %s page first", s.config.Site.Host()))
		}
		return s.setStatus(StatusError, "Open a page with videos before extracting")
	}

	req := agent.NewRequest(agent.ActionExtractAllVideos, &opts)
	resp, err := s.transport.Send(ctx, req)
	if err != nil {
		s.logger.Error("Extraction request failed", zap.Error(err))
		return s.setStatus(StatusError, "Error during extraction")
	}

	records, err := resp.Records()
	if err != nil {
		s.logger.Error("Extraction failed", zap.Error(err))
		return s.setStatus(StatusError, "Failed to extract videos")
	}

	s.extracted = records
	s.options = opts
	s.ready = true

	return s.setStatus(StatusFound, fmt.Sprintf("Extracted %d videos successfully", len(records)))
}

// Export writes the extracted records to a dated CSV file in dir using the
// options of the last extraction, and returns the file path.
func (s *Session) Export(dir string, now time.Time) (string, error) {
	if !s.ready {
		s.setStatus(StatusError, "Extract videos before exporting")
		return "", ErrNotExtracted
	}

	path, err := csvexport.WriteFile(dir, s.extracted, s.options, now)
	if err != nil {
		if errors.Is(err, csvexport.ErrNothingToExport) {
			s.setStatus(StatusError, "No videos to export")
		} else {
			s.setStatus(StatusError, "Failed to write CSV file")
		}
		return "", err
	}

	s.logger.Info("Exported videos", zap.String("path", path), zap.Int("videos", len(s.extracted)))
	s.setStatus(StatusFound, fmt.Sprintf("CSV file saved to %s", path))
	return path, nil
}

// Status returns the status of the last action.
func (s *Session) Status() Status {
	return s.status
}

// Address returns the page address seen by the last Open.
func (s *Session) Address() string {
	return s.address
}

// PageInfo returns the snapshot fetched by Open, if any.
func (s *Session) PageInfo() (video.Snapshot, bool) {
	if s.pageInfo == nil {
		return video.Snapshot{}, false
	}
	return *s.pageInfo, true
}

// Records returns the records of the last successful extraction.
func (s *Session) Records() []video.Record {
	return s.extracted
}

// ExportReady reports whether Export may be called.
func (s *Session) ExportReady() bool {
	return s.ready
}

// Preview returns the bounded preview of the snapshot fetched by Open.
func (s *Session) Preview() Preview {
	if s.pageInfo == nil {
		return Preview{}
	}
	return BuildPreview(*s.pageInfo, s.config.PreviewSize)
}

func (s *Session) requestPageInfo(ctx context.Context) (video.Snapshot, error) {
	resp, err := s.transport.Send(ctx, agent.NewRequest(agent.ActionGetPageInfo, nil))
	if err != nil {
		return video.Snapshot{}, err
	}
	return resp.Snapshot()
}

func (s *Session) setStatus(kind StatusKind, message string) Status {
	s.status = Status{Kind: kind, Message: message}
	return s.status
}

// wait pauses for d or until ctx ends.
func wait(ctx context.Context, d time.Duration) error {
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
