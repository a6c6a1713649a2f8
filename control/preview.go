package control

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pevans/ytexport/video"
)

// PreviewItem is one previewed record.
type PreviewItem struct {
	Title string
	Meta  string
}

// Preview is the first few records of a snapshot plus a count of the rest.
type Preview struct {
	PageType   video.PageType
	VideoCount int
	Items      []PreviewItem
	Remaining  int
}

// BuildPreview takes up to size records from snap.
func BuildPreview(snap video.Snapshot, size int) Preview {
	n := min(size, len(snap.Videos))
	items := make([]PreviewItem, 0, n)
	for _, v := range snap.Videos[:n] {
		items = append(items, PreviewItem{Title: v.Title, Meta: previewMeta(v)})
	}

	return Preview{
		PageType:   snap.PageType,
		VideoCount: snap.VideoCount,
		Items:      items,
		Remaining:  max(snap.VideoCount-n, 0),
	}
}

// Render writes the preview as a table.
func (p Preview) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.SetTitle(fmt.Sprintf("%d videos on this %s page", p.VideoCount, p.PageType))

	t.AppendHeader(table.Row{"#", "Title", "Published / Duration"})
	for i, item := range p.Items {
		t.AppendRow(table.Row{i + 1, item.Title, item.Meta})
	}
	if p.Remaining > 0 {
		t.AppendFooter(table.Row{"", fmt.Sprintf("...and %d more videos", p.Remaining), ""})
	}

	t.Render()
}

func previewMeta(v video.Record) string {
	published := v.PublishedTime
	if published == "" {
		published = "Unknown date"
	}
	duration := v.Duration
	if duration == "" {
		duration = "Unknown duration"
	}
	return published + " • " + duration
}
