package homepage

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Layouts accepted for stored post dates, most specific first.
var postDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParsePostDate parses a stored timestamp string such as "2023-04-01" or
// "2023-04-01 09:30:00+00".
func ParsePostDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("homepage: unrecognized date %q", s)
}

// FormatPostDate formats t for display, e.g. "JAN 2, 2006". The zero time
// formats as "".
func FormatPostDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strings.ToUpper(t.Format("Jan 2, 2006"))
}

// PostDate converts a stored timestamp string to its display form. Strings
// that do not parse are returned unchanged.
func PostDate(stored string) string {
	t, err := ParsePostDate(stored)
	if err != nil {
		return stored
	}
	return FormatPostDate(t)
}

// BuildURL joins a base URL with path segments. With no segments the base
// is returned as parsed, without a trailing slash added.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if len(pathSegments) == 0 {
		return u.String()
	}
	return u.JoinPath(pathSegments...).String()
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", post.Path)
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": post.Title,
		"url":      postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.CreatedAt.IsZero() {
		data["datePublished"] = post.CreatedAt.Format("2006-01-02")
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
