package page

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStaticPage verifies a static capture never changes on scroll
func TestStaticPage(t *testing.T) {
	ctx := context.Background()
	p := NewStaticPage("https://www.youtube.com/", []byte(`<p class="x">hello</p>`))

	addr, err := p.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/", addr)

	require.NoError(t, p.ScrollToBottom(ctx))
	doc, err := p.Document(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find("p.x").Text())
}

// TestLoadStaticPage_MissingFile verifies read errors are reported
func TestLoadStaticPage_MissingFile(t *testing.T) {
	_, err := LoadStaticPage("https://www.youtube.com/", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

// TestSequencePage_AdvancesAndClamps verifies each scroll moves to the next
// capture and stays on the last one
func TestSequencePage_AdvancesAndClamps(t *testing.T) {
	ctx := context.Background()
	p, err := NewSequencePage("https://www.youtube.com/@x", [][]byte{
		[]byte(`<p>one</p>`),
		[]byte(`<p>two</p>`),
	})
	require.NoError(t, err)

	text := func() string {
		doc, err := p.Document(ctx)
		require.NoError(t, err)
		return doc.Find("p").Text()
	}

	assert.Equal(t, "one", text())
	require.NoError(t, p.ScrollToBottom(ctx))
	assert.Equal(t, "two", text())
	require.NoError(t, p.ScrollToBottom(ctx))
	assert.Equal(t, "two", text())
	assert.Equal(t, 2, p.Scrolls())
}

// TestSequencePage_Empty verifies at least one capture is required
func TestSequencePage_Empty(t *testing.T) {
	_, err := NewSequencePage("https://www.youtube.com/", nil)
	assert.Error(t, err)
}

// TestSequencePage_CancelledScroll verifies a cancelled context stops the scroll
func TestSequencePage_CancelledScroll(t *testing.T) {
	p, err := NewSequencePage("https://www.youtube.com/", [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.ScrollToBottom(ctx), context.Canceled)
	assert.Equal(t, 0, p.Scrolls())
}

// TestLoadSequencePage_FileOrder verifies captures are replayed in name order
func TestLoadSequencePage_FileOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02.html"), []byte(`<p>second</p>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01.html"), []byte(`<p>first</p>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0o600))

	p, err := LoadSequencePage("https://www.youtube.com/playlist?list=x", dir)
	require.NoError(t, err)

	doc, err := p.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Find("p").Text())
}

// TestLoadSequencePage_EmptyDir verifies a directory without captures fails
func TestLoadSequencePage_EmptyDir(t *testing.T) {
	_, err := LoadSequencePage("https://www.youtube.com/", t.TempDir())
	assert.Error(t, err)
}
