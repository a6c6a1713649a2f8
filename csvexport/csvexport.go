// Package csvexport serializes video records into the exported CSV file.
package csvexport

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/ytexport/video"
)

// ErrNothingToExport is returned when an export is requested with no records.
var ErrNothingToExport = errors.New("no videos to export")

// Columns returns the header row for the given options. Title, URL, Video ID,
// Channel, Published Time and Duration are always present.
func Columns(opts video.Options) []string {
	cols := []string{"Title", "URL", "Video ID", "Channel", "Published Time", "Duration"}
	if opts.IncludeViewCounts {
		cols = append(cols, "View Count")
	}
	if opts.IncludeThumbnails {
		cols = append(cols, "Thumbnail URL")
	}
	if opts.IncludeDescriptions {
		cols = append(cols, "Description")
	}
	return cols
}

// Row returns the unescaped fields of one record, matching Columns.
func Row(r video.Record, opts video.Options) []string {
	row := []string{r.Title, r.URL, r.VideoID, r.Channel, r.PublishedTime, r.Duration}
	if opts.IncludeViewCounts {
		row = append(row, r.ViewCount)
	}
	if opts.IncludeThumbnails {
		row = append(row, r.Thumbnail)
	}
	if opts.IncludeDescriptions {
		row = append(row, r.Description)
	}
	return row
}

// Escape quotes a field when it contains a comma, a double quote or a
// newline, doubling any embedded double quotes.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Encode writes the header and one line per record. Lines are separated by
// LF with no trailing newline.
func Encode(w io.Writer, records []video.Record, opts video.Options) error {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, joinEscaped(Columns(opts)))
	for _, r := range records {
		lines = append(lines, joinEscaped(Row(r, opts)))
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// Filename returns the export file name for the given moment, using its UTC
// calendar date.
func Filename(now time.Time) string {
	return fmt.Sprintf("youtube_videos_%s.csv", now.UTC().Format("2006-01-02"))
}

// maxSuffix bounds the numbered names tried for one day's export.
const maxSuffix = 1000

// WriteFile writes records to a dated CSV file in dir and returns its path.
// An existing file is never replaced: later exports of the same day are
// numbered "youtube_videos_<date> (1).csv", "(2)" and so on.
func WriteFile(dir string, records []video.Record, opts video.Options, now time.Time) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToExport
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, path, err := createUnique(dir, Filename(now))
	if err != nil {
		return "", err
	}

	if err := Encode(f, records, opts); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	return path, nil
}

// createUnique creates name in dir, or the first free numbered variant.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; n < maxSuffix; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to create export file: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("failed to create export file: too many exports named %s", name)
}

func joinEscaped(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = Escape(f)
	}
	return strings.Join(escaped, ",")
}
