package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/homepage"
)

var testCfg = homepage.SiteConfig{
	Name:        "Test Site",
	URL:         "https://example.com",
	Description: "Notes and projects",
	Author:      "Tester",
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestPostPage(t *testing.T) {
	v := New(testCfg)
	post := homepage.Post{
		Title:     "Hello <World>",
		Path:      "hello-world",
		CreatedAt: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	got := renderString(t, v.Post(post, "<h1>Hi</h1>\n<p>body</p>\n"))

	for _, want := range []string{
		"<h1>Hi</h1>",
		"Hello &lt;World&gt;",
		"APR 1, 2023",
		`href="/highlight.css"`,
		`"@type":"BlogPosting"`,
		`<link rel="canonical" href="https://example.com/blog/hello-world">`,
		`content="article"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestBlogPage(t *testing.T) {
	v := New(testCfg)
	list := []homepage.Post{
		{Title: "First", Path: "first", CreatedAt: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "Second", Path: "second"},
	}
	got := renderString(t, v.Blog(list, "That post could not be found."))

	if !strings.Contains(got, `<a href="/blog/first">First</a>`) {
		t.Errorf("missing first post link in %s", got)
	}
	if !strings.Contains(got, "JAN 2, 2022") {
		t.Errorf("missing first post date")
	}
	if !strings.Contains(got, `<p class="flash">That post could not be found.</p>`) {
		t.Errorf("missing flash")
	}
	if strings.Index(got, "First") > strings.Index(got, "Second") {
		t.Errorf("posts out of order")
	}
}

func TestBlogPageEmpty(t *testing.T) {
	got := renderString(t, New(testCfg).Blog(nil, ""))
	if !strings.Contains(got, "No posts yet.") {
		t.Errorf("expected empty listing message")
	}
	if strings.Contains(got, `class="flash"`) {
		t.Errorf("unexpected flash")
	}
}

func TestProjectsPage(t *testing.T) {
	v := New(testCfg, Project{Name: "homepage", URL: "https://github.com/eringen/homepage", Description: "This site"})
	got := renderString(t, v.Projects())
	if !strings.Contains(got, `<a href="https://github.com/eringen/homepage">homepage</a>`) {
		t.Errorf("missing project link in %s", got)
	}

	got = renderString(t, New(testCfg).Projects())
	if !strings.Contains(got, "Nothing to show yet.") {
		t.Errorf("expected empty projects message")
	}
}

func TestHomePage(t *testing.T) {
	got := renderString(t, New(testCfg).Home())
	for _, want := range []string{"<title>Test Site</title>", "Notes and projects", `"@type":"WebSite"`, `<link rel="canonical" href="https://example.com">`, `"url":"https://example.com"`} {
		if !strings.Contains(got, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestErrorPages(t *testing.T) {
	v := New(testCfg)
	if got := renderString(t, v.NotFound()); !strings.Contains(got, "Page not found") {
		t.Errorf("not found page: %s", got)
	}
	if got := renderString(t, v.ServerError()); !strings.Contains(got, "Something went wrong") {
		t.Errorf("server error page: %s", got)
	}
}
