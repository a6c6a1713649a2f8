package video

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDedupe_DropsIncompleteAndDuplicates verifies the completeness filter and
// first-occurrence dedup
func TestDedupe_DropsIncompleteAndDuplicates(t *testing.T) {
	records := []Record{
		{Index: 1, Title: "First", VideoID: "aaa"},
		{Index: 2, Title: "", VideoID: "bbb"},
		{Index: 3, Title: "Second", VideoID: ""},
		{Index: 4, Title: "First again", VideoID: "aaa"},
		{Index: 5, Title: "Third", VideoID: "ccc"},
	}

	out := Dedupe(records)

	require.Len(t, out, 2)
	assert.Equal(t, "First", out[0].Title, "should keep the first occurrence")
	assert.Equal(t, 1, out[0].Index)
	assert.Equal(t, "ccc", out[1].VideoID)
}

// TestNewSnapshot_CountMatches verifies VideoCount tracks the record set
func TestNewSnapshot_CountMatches(t *testing.T) {
	snap := NewSnapshot(PagePlaylist, []Record{{Title: "a", VideoID: "1"}})
	assert.Equal(t, 1, snap.VideoCount)

	empty := NewSnapshot(PageHome, nil)
	assert.Equal(t, 0, empty.VideoCount)
	assert.NotNil(t, empty.Videos, "should encode as an empty list, not null")
}

// TestSnapshotClone_IsIndependent verifies the clone shares no backing array
func TestSnapshotClone_IsIndependent(t *testing.T) {
	snap := NewSnapshot(PageChannel, []Record{{Title: "a", VideoID: "1"}})
	clone := snap.Clone()
	clone.Videos[0].Title = "changed"

	assert.Equal(t, "a", snap.Videos[0].Title)
}

// TestPageType_Paginated verifies which page types scroll for more items
func TestPageType_Paginated(t *testing.T) {
	assert.True(t, PageChannel.Paginated())
	assert.True(t, PagePlaylist.Paginated())
	assert.False(t, PageSearch.Paginated())
	assert.False(t, PageVideo.Paginated())
	assert.False(t, PageHome.Paginated())
}

// TestOptions_UnmarshalDefaults verifies omitted fields keep their defaults
func TestOptions_UnmarshalDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, json.Unmarshal([]byte(`{"includeThumbnails": true}`), &opts))

	assert.True(t, opts.ScrollToLoadMore, "scroll should default to true")
	assert.True(t, opts.IncludeThumbnails)
	assert.False(t, opts.IncludeDescriptions)
	assert.True(t, opts.IncludeViewCounts)

	require.NoError(t, json.Unmarshal([]byte(`{"scrollToLoadMore": false}`), &opts))
	assert.False(t, opts.ScrollToLoadMore, "explicit false should win")
}

// TestRecordJSON_FieldNames verifies the wire names of record fields
func TestRecordJSON_FieldNames(t *testing.T) {
	data, err := json.Marshal(Record{Index: 1, VideoID: "abc", PublishedTime: "1 day ago"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "videoId")
	assert.Contains(t, raw, "publishedTime")
	assert.Contains(t, raw, "viewCount")
}

func TestSite_Owns(t *testing.T) {
	site := DefaultSite()

	tests := []struct {
		address string
		want    bool
	}{
		{"https://www.youtube.com/@golang/videos", true},
		{"https://youtube.com/playlist?list=PL1", true},
		{"https://m.youtube.com/watch?v=abc", true},
		{"https://example.com/?q=youtube.com", false},
		{"https://notyoutube.com/", false},
		{"chrome://newtab/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, site.Owns(tt.address))
		})
	}
}

func TestSite_Validate(t *testing.T) {
	require.NoError(t, DefaultSite().Validate())

	bad := DefaultSite()
	bad.BaseURL = "ftp://example.com"
	assert.Error(t, bad.Validate())

	bad = DefaultSite()
	bad.IDParam = ""
	assert.Error(t, bad.Validate())
}
