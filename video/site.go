package video

import (
	"fmt"
	"net/url"
	"strings"
)

// Site describes the video-hosting site being scraped: where its pages live
// and how watch links carry the video identifier.
type Site struct {
	BaseURL   string `yaml:"base_url"`
	WatchPath string `yaml:"watch_path"`
	IDParam   string `yaml:"id_param"`
}

// DefaultSite returns the YouTube site description.
func DefaultSite() Site {
	return Site{
		BaseURL:   "https://www.youtube.com",
		WatchPath: "/watch",
		IDParam:   "v",
	}
}

// Host returns the host name of the site's base URL.
func (s Site) Host() string {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Owns reports whether the given address belongs to the site. Subdomains of
// the registrable part of the host (m.youtube.com, music.youtube.com) count.
func (s Site) Owns(address string) bool {
	u, err := url.Parse(address)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	root := strings.TrimPrefix(strings.ToLower(s.Host()), "www.")
	if root == "" {
		return false
	}
	return host == root || strings.HasSuffix(host, "."+root)
}

// Validate checks that the site description is usable.
func (s Site) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme")
	}
	if !strings.HasPrefix(s.WatchPath, "/") {
		return fmt.Errorf("watch_path must start with /")
	}
	if s.IDParam == "" {
		return fmt.Errorf("id_param is required")
	}
	return nil
}
