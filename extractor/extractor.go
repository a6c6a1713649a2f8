// Package extractor pulls structured video metadata out of a single rendered
// video card. Each field is read through an ordered list of selectors; the
// first one that yields a value wins.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/ytexport/video"
)

// Extractor holds the field chains used to read a video card.
type Extractor struct {
	site video.Site
	base *url.URL

	Title         Field
	Link          Field
	Channel       Field
	PublishedTime Field
	Duration      Field
	ViewCount     Field
	Thumbnail     Field
	Description   Field
}

// New creates an extractor with the selector chains for the given site's
// current page layouts.
func New(site video.Site) (*Extractor, error) {
	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site base URL: %w", err)
	}

	watchLink := fmt.Sprintf(`a[href*=%q]`, site.WatchPath)

	return &Extractor{
		site: site,
		base: base,
		Title: FirstOf(
			TextOrAttr("#video-title", "title"),
			TextOrAttr(".ytd-video-renderer #video-title", "title"),
			TextOrAttr("h3 a", "title"),
			TextOrAttr(".ytd-compact-video-renderer #video-title", "title"),
		),
		Link: FirstOf(
			Attrs("href", "a#video-title-link", "a#thumbnail", "#video-title", "h3 a"),
			Attr(watchLink, "href"),
		),
		Channel: Texts(
			".ytd-channel-name a",
			"#channel-name a",
			".ytd-video-owner-renderer a",
		),
		PublishedTime: Texts(
			"#metadata-line span:last-child",
			".ytd-video-meta-block span:last-child",
			"#published-time-text",
		),
		Duration: Texts(
			".ytd-thumbnail-overlay-time-status-renderer",
			"#overlays .ytd-thumbnail-overlay-time-status-renderer",
		),
		ViewCount: Texts(
			"#metadata-line span:first-child",
			".ytd-video-meta-block span:first-child",
			"#view-count-text",
		),
		Thumbnail: FirstOf(
			Attr("img", "src"),
			Attr("img", "data-src"),
		),
		Description: Texts(
			"#description-text",
			".description-text",
		),
	}, nil
}

// Extract reads one video card. position is the 1-based position of the card
// among the matched cards on the page. A fault while reading the card drops
// the whole record: the result is nil and the error describes the fault.
func (e *Extractor) Extract(card *goquery.Selection, position int) (rec *video.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("extract card %d: %v", position, r)
		}
	}()

	if card == nil || card.Length() == 0 {
		return nil, fmt.Errorf("extract card %d: empty element", position)
	}

	record := &video.Record{
		Index:         position,
		Title:         e.Title(card),
		Channel:       e.Channel(card),
		PublishedTime: e.PublishedTime(card),
		Duration:      e.Duration(card),
		ViewCount:     e.ViewCount(card),
		Thumbnail:     e.resolve(e.Thumbnail(card)),
		Description:   e.Description(card),
	}
	record.URL, record.VideoID = e.watchLink(e.Link(card))

	return record, nil
}

// watchLink turns an anchor href into an absolute watch URL and the video ID
// carried in its query string.
func (e *Extractor) watchLink(href string) (string, string) {
	if href == "" {
		return "", ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", ""
	}
	id := u.Query().Get(e.site.IDParam)

	switch {
	case strings.HasPrefix(href, e.site.WatchPath):
		return e.base.ResolveReference(u).String(), id
	case !strings.HasPrefix(u.Path, e.site.WatchPath):
		return "", id
	case u.IsAbs() && e.site.Owns(href):
		return href, id
	case u.Scheme == "" && u.Host != "":
		// Protocol-relative, //host/watch?v=...
		abs := e.base.ResolveReference(u)
		if e.site.Owns(abs.String()) {
			return abs.String(), id
		}
	}
	return "", id
}

// resolve makes a possibly relative or protocol-relative reference absolute
// against the site base.
func (e *Extractor) resolve(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return e.base.ResolveReference(u).String()
}
