package video

import "encoding/json"

// Options controls a full extraction and the shape of the exported file.
type Options struct {
	// ScrollToLoadMore is only consulted on channel and playlist pages.
	ScrollToLoadMore    bool `json:"scrollToLoadMore" yaml:"scroll_to_load_more"`
	IncludeThumbnails   bool `json:"includeThumbnails" yaml:"include_thumbnails"`
	IncludeDescriptions bool `json:"includeDescriptions" yaml:"include_descriptions"`
	IncludeViewCounts   bool `json:"includeViewCounts" yaml:"include_view_counts"`
}

// DefaultOptions returns the options used when nothing else is specified.
func DefaultOptions() Options {
	return Options{
		ScrollToLoadMore:  true,
		IncludeViewCounts: true,
	}
}

// UnmarshalJSON decodes options, leaving defaults in place for any field the
// payload omits.
func (o *Options) UnmarshalJSON(data []byte) error {
	type plain Options
	opts := plain(DefaultOptions())
	if err := json.Unmarshal(data, &opts); err != nil {
		return err
	}
	*o = Options(opts)
	return nil
}
