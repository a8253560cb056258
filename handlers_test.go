package homepage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// testViews renders just enough of each page for handler assertions.
func testViews() ViewFuncs {
	return ViewFuncs{
		Home:     func() templ.Component { return textComponent("home page") },
		Projects: func() templ.Component { return textComponent("projects page") },
		Blog: func(list []Post, flash string) templ.Component {
			var b strings.Builder
			fmt.Fprintf(&b, "flash=%q\n", flash)
			for _, p := range list {
				fmt.Fprintf(&b, "%s|%s|%s\n", p.Title, p.Link(), p.Date())
			}
			return textComponent(b.String())
		},
		Post: func(p Post, html string) templ.Component {
			return textComponent("title=" + p.Title + "\n" + html)
		},
		NotFound:    func() templ.Component { return textComponent("not found page") },
		ServerError: func() templ.Component { return textComponent("server error page") },
	}
}

func setupTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	root := t.TempDir()
	blog := filepath.Join(root, "public", "files", "blog")
	writePostFile(t, blog, "2023/hello-world.md", "---\ntitle: Hello World\n---\n# Hi\n\nSome *text*.\n")
	writePostFile(t, blog, "orphan-post.md", "# Orphan\n")
	writePostFile(t, root, "public/robots.txt", "User-agent: *\n")

	store := setupTestStore(t)
	_, err := SavePost(context.Background(), store.DB(), &Post{Title: "Hello World", Path: "hello-world", CreatedAt: day(2023, 4, 1)})
	require.NoError(t, err)

	cfg.Root = root
	if cfg.URL == "" {
		cfg.URL = "https://example.com"
	}
	app := New(cfg, testViews(), append([]Option{WithStore(store)}, opts...)...)
	require.NoError(t, app.Setup(context.Background()))
	t.Cleanup(func() { app.Close() })
	return app
}

func doGet(app *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHandlePost(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/blog/hello-world")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "title=Hello World")
	assert.Contains(t, body, "<h1>Hi</h1>")
	assert.Contains(t, body, "<em>text</em>")
	assert.NotContains(t, body, "title: Hello World", "front matter must not be rendered")
}

func TestHandlePostWithoutMetadataRow(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/blog/orphan-post")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "title=Orphan post")
	assert.Contains(t, rec.Body.String(), "<h1>Orphan</h1>")
}

func TestHandlePostMissingRedirectsWithFlash(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/blog/missing-post")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/blog", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = doGet(app, "/blog", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flash="That post could not be found."`)

	// The flash is shown once.
	rec = doGet(app, "/blog", rec.Result().Cookies()...)
	assert.Contains(t, rec.Body.String(), `flash=""`)
}

func TestHandlePostInvalidSlug(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	for _, target := range []string{"/blog/..", "/blog/%2e%2e", "/blog/a%2Fb"} {
		rec := doGet(app, target)
		assert.NotEqual(t, http.StatusOK, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "<h1>", target)
	}
}

func TestHandleBlogListing(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello World|/blog/hello-world|APR 1, 2023")
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestStaticPages(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home page", rec.Body.String())

	rec = doGet(app, "/projects")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "projects page", rec.Body.String())

	rec = doGet(app, "/home")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = doGet(app, "/robots.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User-agent")
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/blog/hello-world/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/hello-world", rec.Header().Get("Location"))
}

func TestNotFoundPage(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/does/not/exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found page", rec.Body.String())
}

func TestFeedAndSitemap(t *testing.T) {
	app := setupTestApp(t, SiteConfig{Name: "Test Site"})

	rec := doGet(app, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/rss+xml")
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Test Site</title>")
	assert.Contains(t, body, "<link>https://example.com/blog/hello-world</link>")
	assert.Contains(t, body, "<pubDate>Sat, 01 Apr 2023 00:00:00 +0000</pubDate>")

	rec = doGet(app, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "<loc>https://example.com/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/projects</loc>")
	assert.Contains(t, body, "<loc>https://example.com/blog/hello-world</loc>")
	assert.Contains(t, body, "<lastmod>2023-04-01</lastmod>")
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
}

func TestHighlightCSS(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})

	rec := doGet(app, "/highlight.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/css")
	assert.Contains(t, rec.Body.String(), ".chroma")
}

func TestPostLookupRateLimit(t *testing.T) {
	app := setupTestApp(t, SiteConfig{LookupLimit: 2})

	assert.Equal(t, http.StatusOK, doGet(app, "/blog/hello-world").Code)
	assert.Equal(t, http.StatusFound, doGet(app, "/blog/missing").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(app, "/blog/hello-world").Code)

	// The listing is not rate limited.
	assert.Equal(t, http.StatusOK, doGet(app, "/blog").Code)
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	app := New(SiteConfig{Profile: ProfileProduction}, testViews())
	assert.Error(t, app.Setup(context.Background()))
}

// vanishingFinder deletes the post file after locating it, so the read that
// follows fails.
type vanishingFinder struct {
	next postFinder
}

func (f vanishingFinder) Find(ctx context.Context, slug string) (string, error) {
	path, err := f.next.Find(ctx, slug)
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return path, nil
}

func TestHandlePostUnreadableRedirectsWithFlash(t *testing.T) {
	app := setupTestApp(t, SiteConfig{})
	app.finder = vanishingFinder{next: app.Posts}

	rec := doGet(app, "/blog/hello-world")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/blog", rec.Header().Get("Location"))

	rec = doGet(app, "/blog", rec.Result().Cookies()...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flash="That post could not be found."`)
}

func TestFlashSurvivesSecretChange(t *testing.T) {
	before := setupTestApp(t, SiteConfig{SessionSecret: "secret-before-restart"})
	after := setupTestApp(t, SiteConfig{SessionSecret: "secret-after-restart"})

	stale := doGet(before, "/blog/missing-post").Result().Cookies()
	require.NotEmpty(t, stale)

	rec := doGet(after, "/blog/missing-post", stale...)
	require.Equal(t, http.StatusFound, rec.Code)
	fresh := rec.Result().Cookies()
	require.NotEmpty(t, fresh, "stale cookie should be replaced")

	rec = doGet(after, "/blog", fresh...)
	assert.Contains(t, rec.Body.String(), `flash="That post could not be found."`)
}

func TestBlogReplacesStaleSessionCookie(t *testing.T) {
	before := setupTestApp(t, SiteConfig{SessionSecret: "secret-before-restart"})
	after := setupTestApp(t, SiteConfig{SessionSecret: "secret-after-restart"})

	stale := doGet(before, "/blog/missing-post").Result().Cookies()
	require.NotEmpty(t, stale)

	rec := doGet(after, "/blog", stale...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flash=""`)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestWithStaticDir(t *testing.T) {
	static := t.TempDir()
	writePostFile(t, static, "robots.txt", "User-agent: custom\n")
	writePostFile(t, static, "css/site.css", "body{}")

	app := setupTestApp(t, SiteConfig{}, WithStaticDir(static))

	rec := doGet(app, "/robots.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User-agent: custom")

	rec = doGet(app, "/public/css/site.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestWithCustomRoutes(t *testing.T) {
	app := setupTestApp(t, SiteConfig{}, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/now", func(c echo.Context) error {
			return c.String(http.StatusOK, "now page")
		})
	}))

	rec := doGet(app, "/now")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "now page", rec.Body.String())
}
