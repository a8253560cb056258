package homepage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/uptrace/bun"

	"github.com/eringen/homepage/markdown"
	"github.com/eringen/homepage/posts"
)

// SyncResult summarizes a SyncPosts run.
type SyncResult struct {
	Inserted int
	Updated  int
	Skipped  []string // paths whose front matter or date could not be read
}

// SyncPosts records one posts row per Markdown file under the locator's
// root. Titles come from front matter, then the first "# " heading, then
// the slug; dates from front matter, then (for new rows only) the file's
// modification time.
// When two files share a stem only the first in traversal order is
// recorded, matching what Locator.Find would serve.
func SyncPosts(ctx context.Context, db bun.IDB, loc *posts.Locator) (SyncResult, error) {
	var res SyncResult
	entries, err := loc.All(ctx)
	if err != nil {
		return res, err
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Slug]; dup {
			continue
		}
		seen[e.Slug] = struct{}{}

		post, modTime, err := postFromFile(e)
		if err != nil {
			res.Skipped = append(res.Skipped, e.Path)
			continue
		}
		if post.CreatedAt.IsZero() {
			// Modification times only date new rows; an edit must not
			// move an existing post.
			_, err := GetPost(ctx, db, post.Path)
			switch {
			case errors.Is(err, ErrNotFound):
				post.CreatedAt = modTime
			case err != nil:
				return res, fmt.Errorf("homepage: lookup %s: %w", e.Slug, err)
			}
		}
		created, err := SavePost(ctx, db, &post)
		if err != nil {
			return res, fmt.Errorf("homepage: save %s: %w", e.Slug, err)
		}
		if created {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

// postFromFile builds the row for e. CreatedAt is set only from front
// matter; the file's modification time is returned separately.
func postFromFile(e posts.Entry) (Post, time.Time, error) {
	info, err := os.Stat(e.Path)
	if err != nil {
		return Post{}, time.Time{}, err
	}
	src, err := posts.Read(e.Path)
	if err != nil {
		return Post{}, time.Time{}, err
	}
	meta, body, err := markdown.ParseFrontMatter(src)
	if err != nil {
		return Post{}, time.Time{}, err
	}

	post := Post{Title: meta.Title, Path: e.Slug}
	if post.Title == "" {
		post.Title = markdown.FirstHeading(body)
	}
	if post.Title == "" {
		post.Title = placeholderPost(e.Slug).Title
	}

	if meta.Date != "" {
		t, err := ParsePostDate(meta.Date)
		if err != nil {
			return Post{}, time.Time{}, err
		}
		post.CreatedAt = t
	}
	return post, info.ModTime().UTC(), nil
}

// Sync validates the configuration, opens the store if needed, and runs
// SyncPosts over the app's blog tree.
func (a *App) Sync(ctx context.Context) (SyncResult, error) {
	if err := a.Config.Validate(); err != nil {
		return SyncResult{}, err
	}
	if err := a.openStore(ctx); err != nil {
		return SyncResult{}, err
	}
	return SyncPosts(ctx, a.Store.DB(), a.Posts)
}
