// Package feed imports the videos listed in a saved YouTube channel feed. The
// feed is an Atom document with yt: and media: extensions; it is read from a
// local file or reader and never fetched.
package feed

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/pevans/ytexport/video"
)

// Parse reads a channel feed and converts its entries into a channel
// snapshot. Entries without a title or video ID are dropped and repeated IDs
// keep their first occurrence.
func Parse(r io.Reader) (video.Snapshot, error) {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(r)
	if err != nil {
		return video.Snapshot{}, fmt.Errorf("failed to parse feed: %w", err)
	}
	return ToSnapshot(feed), nil
}

// ParseFile reads a channel feed from path.
func ParseFile(path string) (video.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return video.Snapshot{}, fmt.Errorf("failed to open feed: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// ToSnapshot converts every entry of a parsed feed.
func ToSnapshot(feed *gofeed.Feed) video.Snapshot {
	channel := ""
	if feed.Author != nil {
		channel = feed.Author.Name
	}
	if channel == "" {
		channel = feed.Title
	}

	records := make([]video.Record, 0, len(feed.Items))
	for i, item := range feed.Items {
		records = append(records, ItemToRecord(item, channel, i+1))
	}
	return video.NewSnapshot(video.PageChannel, video.Dedupe(records))
}

// ItemToRecord maps one feed entry to a video record. channel is used when
// the entry names no author of its own.
func ItemToRecord(item *gofeed.Item, channel string, position int) video.Record {
	rec := video.Record{
		Index: position,
		Title: strings.TrimSpace(item.Title),
		URL:   item.Link,
	}

	// <yt:videoId>, or the entry id "yt:video:<id>"
	rec.VideoID = extensionValue(item.Extensions, "yt", "videoId")
	if rec.VideoID == "" {
		rec.VideoID = strings.TrimPrefix(item.GUID, "yt:video:")
		if rec.VideoID == item.GUID {
			rec.VideoID = ""
		}
	}

	rec.Channel = channel
	if item.Author != nil && item.Author.Name != "" {
		rec.Channel = item.Author.Name
	}

	switch {
	case item.PublishedParsed != nil:
		rec.PublishedTime = item.PublishedParsed.UTC().Format(time.DateOnly)
	case item.Published != "":
		rec.PublishedTime = item.Published
	}

	// <media:group> carries thumbnail, description and view statistics
	if group := firstExtension(item.Extensions, "media", "group"); group != nil {
		if thumb := firstChild(group, "thumbnail"); thumb != nil {
			rec.Thumbnail = thumb.Attrs["url"]
		}
		if desc := firstChild(group, "description"); desc != nil {
			rec.Description = strings.TrimSpace(desc.Value)
		}
		if community := firstChild(group, "community"); community != nil {
			if stats := firstChild(community, "statistics"); stats != nil && stats.Attrs["views"] != "" {
				rec.ViewCount = stats.Attrs["views"] + " views"
			}
		}
	}
	if rec.Thumbnail == "" && item.Image != nil {
		rec.Thumbnail = item.Image.URL
	}
	if rec.Description == "" {
		rec.Description = strings.TrimSpace(item.Description)
	}

	return rec
}

func firstExtension(exts ext.Extensions, prefix, name string) *ext.Extension {
	byName, ok := exts[prefix]
	if !ok {
		return nil
	}
	list := byName[name]
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

func extensionValue(exts ext.Extensions, prefix, name string) string {
	e := firstExtension(exts, prefix, name)
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Value)
}

func firstChild(e *ext.Extension, name string) *ext.Extension {
	list := e.Children[name]
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}
