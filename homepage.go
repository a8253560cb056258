// Package homepage is a personal website built with Go, Echo, and templ:
// static pages, a project listing, and a blog whose posts are Markdown files
// on disk with their titles and dates kept in a relational table.
//
// Users provide templ components via the ViewFuncs struct; the views package
// ships a default set.
package homepage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/eringen/homepage/markdown"
	"github.com/eringen/homepage/posts"
)

// ViewFuncs holds the templ components the handlers render. Post receives
// the post's metadata and its rendered HTML; Blog receives the listing and a
// one-shot flash message ("" when there is none).
type ViewFuncs struct {
	Home        func() templ.Component
	Projects    func() templ.Component
	Blog        func(list []Post, flash string) templ.Component
	Post        func(post Post, html string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// postFinder resolves a slug to a post file path. *posts.Locator is the
// only production implementation.
type postFinder interface {
	Find(ctx context.Context, slug string) (string, error)
}

// App wires together the metadata store, post locator, handlers, and
// middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Posts  *posts.Locator
	Views  ViewFuncs

	finder        postFinder
	lookupLimiter *RequestLimiter
	highlightCSS  string
	customRoutes  []func(*App)
	staticDir     string
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Posts:  posts.NewLocator(filepath.Join(cfg.Root, posts.BlogDir)),
	}

	a.finder = a.Posts

	for _, opt := range opts {
		opt(a)
	}
	if a.staticDir == "" {
		a.staticDir = filepath.Join(cfg.Root, "public")
	}

	return a
}

// Setup validates the configuration, opens the store unless one was
// supplied, and registers middleware and routes. Start calls it; tests call
// it directly and drive a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.Config.IsProduction() {
		a.Echo.Logger.SetLevel(log.INFO)
	} else {
		a.Echo.Logger.SetLevel(log.DEBUG)
	}

	if err := a.openStore(ctx); err != nil {
		return err
	}

	css, err := markdown.StyleCSS(a.Config.HighlightStyle)
	if err != nil {
		return fmt.Errorf("homepage: highlight css: %w", err)
	}
	a.highlightCSS = css

	a.lookupLimiter = NewRequestLimiter(a.Config.LookupLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets up the app and serves until the server stops.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	a.Echo.Logger.Infof("serving %s (%s profile), posts from %s", a.Config.URL, a.Config.Profile, a.Posts.Root())
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}
	store, err := OpenStore(ctx, a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("homepage: init store: %w", err)
	}
	a.Store = store
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/highlight.css", a.handleHighlightCSS)

	e.GET("/", a.handleHome)
	e.GET("/home", handleHomeRedirect)
	e.GET("/projects", a.handleProjects)

	// Routes that read posts run under a deadline with their own connection.
	timeout := middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: a.Config.RequestTimeout,
	})
	e.GET("/blog", a.handleBlog, timeout, a.withConn)
	e.GET("/blog/:slug", a.handlePost, a.lookupLimiter.Middleware, timeout, a.withConn)
	e.GET("/feed.xml", a.handleFeed, timeout, a.withConn)
	e.GET("/sitemap.xml", a.handleSitemap, timeout, a.withConn)
}

// Close releases the store and background workers. Call it when the app is
// shutting down.
func (a *App) Close() error {
	if a.lookupLimiter != nil {
		a.lookupLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
