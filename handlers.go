package homepage

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/homepage/markdown"
	"github.com/eringen/homepage/posts"
)

// postMissingMsg is flashed on the listing page after a failed post lookup.
const postMissingMsg = "That post could not be found."

func (a *App) handleHome(c echo.Context) error {
	return Render(c, a.Views.Home())
}

func handleHomeRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/")
}

func (a *App) handleProjects(c echo.Context) error {
	return Render(c, a.Views.Projects())
}

// handleBlog serves the post listing, oldest first.
func (a *App) handleBlog(c echo.Context) error {
	list, err := ListPosts(c.Request().Context(), RequestDB(c))
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(list, popFlash(c)))
}

// handlePost locates the post file for the slug, reads and renders it, and
// pairs it with its metadata row. Any failure to produce the post sends the
// visitor back to the listing.
func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	path, err := a.finder.Find(ctx, slug)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) || errors.Is(err, posts.ErrInvalidSlug) {
			c.Logger().Debugf("post %q: %v", slug, err)
			return a.redirectToBlog(c)
		}
		return err
	}

	meta, err := GetPost(ctx, RequestDB(c), slug)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		c.Logger().Debugf("post %q has no metadata row", slug)
		meta = placeholderPost(slug)
	}

	src, err := posts.Read(path)
	if err != nil {
		c.Logger().Warnf("post %q: %v", slug, err)
		return a.redirectToBlog(c)
	}

	return Render(c, a.Views.Post(meta, markdown.Render(src)))
}

func (a *App) redirectToBlog(c echo.Context) error {
	if err := setFlash(c, postMissingMsg); err != nil {
		c.Logger().Warnf("set flash: %v", err)
	}
	return c.Redirect(http.StatusFound, "/blog")
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := ListPosts(c.Request().Context(), RequestDB(c))
	if err != nil {
		return err
	}
	return a.renderSitemap(c, list)
}

func (a *App) handleFeed(c echo.Context) error {
	list, err := ListPosts(c.Request().Context(), RequestDB(c))
	if err != nil {
		return err
	}
	return a.renderRSS(c, list)
}

func (a *App) handleHighlightCSS(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(a.highlightCSS))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.svg"))
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "robots.txt"))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
