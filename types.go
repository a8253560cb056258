package homepage

import (
	"net/url"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Post is a blog post's metadata row. Path holds the post's slug, which is
// also the stem of its Markdown file.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Title     string    `bun:"title,notnull"`
	Path      string    `bun:"path,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Link returns the site-relative URL of the post page.
func (p Post) Link() string {
	return "/blog/" + url.PathEscape(p.Path)
}

// Date returns the display form of CreatedAt, or "" when unset.
func (p Post) Date() string {
	return FormatPostDate(p.CreatedAt)
}

// placeholderPost stands in for a post whose file exists but has no row.
func placeholderPost(slug string) Post {
	title := strings.ReplaceAll(slug, "-", " ")
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	return Post{Title: title, Path: slug}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
