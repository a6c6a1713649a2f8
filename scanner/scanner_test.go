package scanner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/ytexport/extractor"
	"github.com/pevans/ytexport/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: render a card of the given element type
func renderCard(tag, id, title string) string {
	return fmt.Sprintf(`<%s><a id="video-title" href="/watch?v=%s">%s</a></%s>`, tag, id, title, tag)
}

// Test helper: parse a page body
func parseDoc(t *testing.T, body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

// Test helper: create a scanner for the default site
func newTestScanner(t *testing.T) *Scanner {
	ext, err := extractor.New(video.DefaultSite())
	require.NoError(t, err)
	return New(ext, nil)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    video.PageType
	}{
		{"channel path", "https://www.youtube.com/channel/UC123/videos", video.PageChannel},
		{"handle", "https://www.youtube.com/@golang", video.PageChannel},
		{"playlist", "https://www.youtube.com/playlist?list=PL1", video.PagePlaylist},
		{"search", "https://www.youtube.com/results?search_query=go", video.PageSearch},
		{"watch", "https://www.youtube.com/watch?v=abc", video.PageVideo},
		{"home", "https://www.youtube.com/", video.PageHome},
		{"feed", "https://www.youtube.com/feed/subscriptions", video.PageHome},
		{"handle beats watch", "https://www.youtube.com/@golang/watch", video.PageChannel},
		{"playlist beats watch", "https://www.youtube.com/playlist?next=/watch", video.PagePlaylist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.address))
		})
	}
}

// TestScan_DropsDuplicateAndUntitled mirrors a page with six raw cards, two
// sharing a video ID and one without a title
func TestScan_DropsDuplicateAndUntitled(t *testing.T) {
	body := strings.Join([]string{
		renderCard("ytd-grid-video-renderer", "a1", "First"),
		renderCard("ytd-grid-video-renderer", "a2", "Second"),
		renderCard("ytd-grid-video-renderer", "a1", "First again"),
		renderCard("ytd-grid-video-renderer", "a3", ""),
		renderCard("ytd-grid-video-renderer", "a4", "Fourth"),
		`<ytd-grid-video-renderer><span>not a video</span></ytd-grid-video-renderer>`,
	}, "\n")

	snap := newTestScanner(t).Scan(parseDoc(t, body), "https://www.youtube.com/@gopher/videos")

	assert.Equal(t, video.PageChannel, snap.PageType)
	assert.Equal(t, 3, snap.VideoCount)
	require.Len(t, snap.Videos, 3)
	assert.Equal(t, []string{"a1", "a2", "a4"}, ids(snap.Videos))
	assert.Equal(t, "First", snap.Videos[0].Title, "should keep the first occurrence")
	assert.Equal(t, 5, snap.Videos[2].Index, "index is the position among matched cards")
}

// TestScan_FirstMatchingGroupWins verifies later groups are ignored once an
// earlier group matches, even with a single stray card
func TestScan_FirstMatchingGroupWins(t *testing.T) {
	body := renderCard("ytd-playlist-video-renderer", "p1", "Playlist row") +
		renderCard("ytd-video-renderer", "s1", "Search one") +
		renderCard("ytd-video-renderer", "s2", "Search two")

	snap := newTestScanner(t).Scan(parseDoc(t, body), "https://www.youtube.com/results?search_query=go")

	assert.Equal(t, video.PageSearch, snap.PageType)
	assert.Equal(t, []string{"p1"}, ids(snap.Videos))
}

// TestScan_FallsThroughEmptyGroups verifies groups without matches are skipped
func TestScan_FallsThroughEmptyGroups(t *testing.T) {
	body := renderCard("ytd-rich-grid-media", "r1", "Rich one") +
		renderCard("ytd-rich-grid-media", "r2", "Rich two")

	snap := newTestScanner(t).Scan(parseDoc(t, body), "https://www.youtube.com/")

	assert.Equal(t, video.PageHome, snap.PageType)
	assert.Equal(t, []string{"r1", "r2"}, ids(snap.Videos))
}

// TestScan_NoCards verifies an empty page yields an empty snapshot
func TestScan_NoCards(t *testing.T) {
	snap := newTestScanner(t).Scan(parseDoc(t, "<p>nothing</p>"), "https://www.youtube.com/watch?v=x")

	assert.Equal(t, video.PageVideo, snap.PageType)
	assert.Equal(t, 0, snap.VideoCount)
	assert.Empty(t, snap.Videos)
}

// TestScan_Idempotent verifies repeated scans of an unchanged page match
func TestScan_Idempotent(t *testing.T) {
	body := renderCard("ytd-compact-video-renderer", "c1", "One") +
		renderCard("ytd-compact-video-renderer", "c2", "Two") +
		renderCard("ytd-compact-video-renderer", "c1", "One dup")
	doc := parseDoc(t, body)
	s := newTestScanner(t)

	first := s.Scan(doc, "https://www.youtube.com/watch?v=c0")
	second := s.Scan(doc, "https://www.youtube.com/watch?v=c0")

	assert.Equal(t, first, second)
}

// TestScan_UniqueIDs verifies no two records in a snapshot share an ID
func TestScan_UniqueIDs(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString(renderCard("ytd-video-renderer", fmt.Sprintf("id%d", i%7), fmt.Sprintf("Video %d", i)))
	}

	snap := newTestScanner(t).Scan(parseDoc(t, b.String()), "https://www.youtube.com/results?q=x")

	seen := map[string]bool{}
	for _, v := range snap.Videos {
		assert.False(t, seen[v.VideoID], "duplicate id %s", v.VideoID)
		seen[v.VideoID] = true
		assert.NotEmpty(t, v.Title)
	}
	assert.Len(t, snap.Videos, 7)
}

// TestWithGroups verifies custom group lists replace the defaults
func TestWithGroups(t *testing.T) {
	body := `<li class="item"><a id="video-title" href="/watch?v=l1">Listed</a></li>`
	s := newTestScanner(t).WithGroups([]string{"li.item"})

	snap := s.Scan(parseDoc(t, body), "https://www.youtube.com/")
	assert.Equal(t, []string{"l1"}, ids(snap.Videos))
}

func ids(records []video.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.VideoID)
	}
	return out
}
