package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field reads one value out of a video card. An empty string means the value
// was not found.
type Field func(card *goquery.Selection) string

// FirstOf combines fields into one that returns the first non-empty value, in
// the order given.
func FirstOf(fields ...Field) Field {
	return func(card *goquery.Selection) string {
		for _, f := range fields {
			if v := f(card); v != "" {
				return v
			}
		}
		return ""
	}
}

// Text reads the text of the first element matching selector, trimmed at both
// ends. Inner whitespace and line breaks are kept as rendered.
func Text(selector string) Field {
	return func(card *goquery.Selection) string {
		return strings.TrimSpace(card.Find(selector).First().Text())
	}
}

// TextOrAttr reads the text of the first element matching selector, falling
// back to the named attribute of that same element when the text is blank.
func TextOrAttr(selector, attr string) Field {
	return func(card *goquery.Selection) string {
		el := card.Find(selector).First()
		if text := strings.TrimSpace(el.Text()); text != "" {
			return text
		}
		v, _ := el.Attr(attr)
		return strings.TrimSpace(v)
	}
}

// Attr reads an attribute of the first element matching selector.
func Attr(selector, attr string) Field {
	return func(card *goquery.Selection) string {
		v, _ := card.Find(selector).First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

// Texts builds an ordered fallback over Text for each selector.
func Texts(selectors ...string) Field {
	fields := make([]Field, 0, len(selectors))
	for _, sel := range selectors {
		fields = append(fields, Text(sel))
	}
	return FirstOf(fields...)
}

// Attrs builds an ordered fallback over Attr for each selector.
func Attrs(attr string, selectors ...string) Field {
	fields := make([]Field, 0, len(selectors))
	for _, sel := range selectors {
		fields = append(fields, Attr(sel, attr))
	}
	return FirstOf(fields...)
}
