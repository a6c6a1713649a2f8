// Package scanner classifies a rendered page and turns its video cards into a
// deduplicated snapshot.
package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/ytexport/extractor"
	"github.com/pevans/ytexport/page"
	"github.com/pevans/ytexport/video"
	"go.uber.org/zap"
)

// DefaultGroups lists the card selectors for each known page layout, in the
// order they are tried: grid view, playlist rows, search results,
// compact/related lists, rich-grid cards and shelf-embedded compact cards.
var DefaultGroups = []string{
	"ytd-grid-video-renderer",
	"ytd-playlist-video-renderer",
	"ytd-video-renderer",
	"ytd-compact-video-renderer",
	"ytd-rich-grid-media",
	"ytd-video-shelf-renderer ytd-compact-video-renderer",
}

// Classify determines the page type from its address. Markers are checked in
// priority order and the first match wins.
func Classify(address string) video.PageType {
	switch {
	case strings.Contains(address, "/channel/") || strings.Contains(address, "/@"):
		return video.PageChannel
	case strings.Contains(address, "/playlist"):
		return video.PagePlaylist
	case strings.Contains(address, "/results"):
		return video.PageSearch
	case strings.Contains(address, "/watch"):
		return video.PageVideo
	default:
		return video.PageHome
	}
}

// Scanner builds snapshots from rendered documents.
type Scanner struct {
	extractor *extractor.Extractor
	groups    []string
	logger    *zap.Logger
}

// New creates a scanner using the given extractor. A nil logger disables
// logging.
func New(ext *extractor.Extractor, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		extractor: ext,
		groups:    DefaultGroups,
		logger:    logger,
	}
}

// WithGroups replaces the ordered card selector groups.
func (s *Scanner) WithGroups(groups []string) *Scanner {
	s.groups = groups
	return s
}

// Cards returns the cards of the first selector group that matches anything on
// the page, along with that selector. Later groups are never consulted once an
// earlier one matches.
func (s *Scanner) Cards(doc *goquery.Document) (*goquery.Selection, string) {
	for _, group := range s.groups {
		cards := doc.Find(group)
		if cards.Length() > 0 {
			return cards, group
		}
	}
	return nil, ""
}

// Scan classifies the page at address and extracts every card in document
// order. Faulty or incomplete cards are dropped and records are deduplicated
// by video ID, keeping the first occurrence. Scanning an unchanged document
// always yields the same ordered result.
func (s *Scanner) Scan(doc *goquery.Document, address string) video.Snapshot {
	pageType := Classify(address)

	cards, group := s.Cards(doc)
	if cards == nil {
		s.logger.Debug("No video cards matched", zap.String("page_type", string(pageType)))
		return video.NewSnapshot(pageType, nil)
	}

	records := make([]video.Record, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		rec, err := s.extractor.Extract(card, i+1)
		if err != nil {
			s.logger.Debug("Dropped video card", zap.Int("position", i+1), zap.Error(err))
			return
		}
		records = append(records, *rec)
	})

	videos := video.Dedupe(records)
	s.logger.Debug("Scanned page",
		zap.String("page_type", string(pageType)),
		zap.String("group", group),
		zap.Int("cards", cards.Length()),
		zap.Int("videos", len(videos)),
	)

	return video.NewSnapshot(pageType, videos)
}

// ScanPage reads the current address and DOM of a page and scans it.
func (s *Scanner) ScanPage(ctx context.Context, p page.Page) (video.Snapshot, error) {
	address, err := p.Address(ctx)
	if err != nil {
		return video.Snapshot{}, fmt.Errorf("failed to read page address: %w", err)
	}
	doc, err := p.Document(ctx)
	if err != nil {
		return video.Snapshot{}, fmt.Errorf("failed to read page document: %w", err)
	}
	return s.Scan(doc, address), nil
}
