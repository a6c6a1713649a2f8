package video

// PageType classifies the page a snapshot was taken from.
type PageType string

const (
	PageChannel  PageType = "channel"
	PagePlaylist PageType = "playlist"
	PageSearch   PageType = "search"
	PageVideo    PageType = "video"
	PageHome     PageType = "home"
	PageUnknown  PageType = "unknown"
)

// Paginated reports whether more items can be loaded by scrolling the page.
func (p PageType) Paginated() bool {
	return p == PageChannel || p == PagePlaylist
}

// Record represents the metadata extracted from a single video card. Every
// field except Index is free-form text as rendered by the site.
type Record struct {
	Index         int    `json:"index"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	VideoID       string `json:"videoId"`
	Channel       string `json:"channel"`
	PublishedTime string `json:"publishedTime"`
	Duration      string `json:"duration"`
	ViewCount     string `json:"viewCount"`
	Thumbnail     string `json:"thumbnail"`
	Description   string `json:"description"`
}

// Complete reports whether the record carries the fields required for it to
// be kept: a title and a video ID.
func (r Record) Complete() bool {
	return r.Title != "" && r.VideoID != ""
}

// Snapshot is the classification and record set of a page at one point in
// time. It is rebuilt in full on every scan.
type Snapshot struct {
	PageType   PageType `json:"pageType"`
	VideoCount int      `json:"videoCount"`
	Videos     []Record `json:"videos"`
}

// NewSnapshot builds a snapshot whose VideoCount matches its record set.
func NewSnapshot(pageType PageType, videos []Record) Snapshot {
	if videos == nil {
		videos = []Record{}
	}
	return Snapshot{
		PageType:   pageType,
		VideoCount: len(videos),
		Videos:     videos,
	}
}

// Clone returns a deep copy of the snapshot, so the receiver of the copy can
// own it independently.
func (s Snapshot) Clone() Snapshot {
	videos := make([]Record, len(s.Videos))
	copy(videos, s.Videos)
	return Snapshot{
		PageType:   s.PageType,
		VideoCount: s.VideoCount,
		Videos:     videos,
	}
}

// Dedupe drops incomplete records and keeps only the first occurrence of each
// video ID, preserving the original order.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Complete() {
			continue
		}
		if _, ok := seen[r.VideoID]; ok {
			continue
		}
		seen[r.VideoID] = struct{}{}
		out = append(out, r)
	}
	return out
}
