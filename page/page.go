// Package page provides access to an already-rendered page: its address, its
// current DOM and a way to scroll it so lazily loaded content appears.
package page

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Page is a rendered page owned by the page-side process.
type Page interface {
	// Address returns the current address of the page.
	Address(ctx context.Context) (string, error)
	// Document returns a parsed copy of the page's current DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	// ScrollToBottom scrolls the page to its current bottom extent.
	ScrollToBottom(ctx context.Context) error
}

// StaticPage is a single captured page. Scrolling it never changes its
// content.
type StaticPage struct {
	address string
	html    []byte
}

// NewStaticPage creates a page from captured HTML.
func NewStaticPage(address string, html []byte) *StaticPage {
	return &StaticPage{address: address, html: html}
}

// LoadStaticPage reads a captured page from an HTML file.
func LoadStaticPage(address, path string) (*StaticPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page capture: %w", err)
	}
	return NewStaticPage(address, data), nil
}

func (p *StaticPage) Address(context.Context) (string, error) {
	return p.address, nil
}

func (p *StaticPage) Document(context.Context) (*goquery.Document, error) {
	return parse(p.html)
}

func (p *StaticPage) ScrollToBottom(context.Context) error {
	return nil
}

// SequencePage replays a series of captures of the same page, taken after
// successive scrolls. Each scroll advances to the next capture; once the last
// capture is reached further scrolls leave it in place.
type SequencePage struct {
	address string
	frames  [][]byte

	mu      sync.Mutex
	current int
	scrolls int
}

// NewSequencePage creates a page from ordered captures. At least one capture
// is required.
func NewSequencePage(address string, frames [][]byte) (*SequencePage, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("sequence page needs at least one capture")
	}
	return &SequencePage{address: address, frames: frames}, nil
}

// LoadSequencePage reads every .html file in dir, in file name order, as the
// successive captures of one page.
func LoadSequencePage(address, dir string) (*SequencePage, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	sort.Strings(matches)

	frames := make([][]byte, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read capture %s: %w", filepath.Base(path), err)
		}
		frames = append(frames, data)
	}

	return NewSequencePage(address, frames)
}

func (p *SequencePage) Address(context.Context) (string, error) {
	return p.address, nil
}

func (p *SequencePage) Document(context.Context) (*goquery.Document, error) {
	p.mu.Lock()
	html := p.frames[p.current]
	p.mu.Unlock()
	return parse(html)
}

func (p *SequencePage) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	if p.current < len(p.frames)-1 {
		p.current++
	}
	return nil
}

// Scrolls returns how many times the page has been scrolled.
func (p *SequencePage) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

func parse(html []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
