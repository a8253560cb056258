// Package views is the default presentation layer for homepage: the pages
// are html/template files embedded in the binary, exposed as templ
// components through homepage.ViewFuncs.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/homepage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Project is one entry on the projects page.
type Project struct {
	Name        string
	URL         string
	Description string
}

type pageData struct {
	Site     homepage.SiteConfig
	Meta     homepage.PageMeta
	JSONLD   template.JS
	Projects []Project
	Posts    []homepage.Post
	Post     homepage.Post
	HTML     template.HTML
	Flash    string
}

var (
	homeTmpl      = parsePage("home.html")
	projectsTmpl  = parsePage("projects.html")
	blogTmpl      = parsePage("blog.html")
	postTmpl      = parsePage("post.html")
	notFoundTmpl  = parsePage("notfound.html")
	serverErrTmpl = parsePage("error.html")
)

// parsePage pairs a page's "content" block with the shared layout.
func parsePage(file string) *template.Template {
	return template.Must(template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+file))
}

func page(tmpl *template.Template, data pageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return tmpl.ExecuteTemplate(w, "layout.html", data)
	})
}

// New returns the default ViewFuncs for cfg. The projects are listed on
// /projects in the order given.
func New(cfg homepage.SiteConfig, projects ...Project) homepage.ViewFuncs {
	site := homepage.BuildURL(cfg.URL)
	return homepage.ViewFuncs{
		Home: func() templ.Component {
			return page(homeTmpl, pageData{
				Site:   cfg,
				Meta:   homepage.PageMeta{Description: cfg.Description, URL: site, OGType: "website"},
				JSONLD: template.JS(homepage.WebsiteJsonLD(cfg)),
			})
		},
		Projects: func() templ.Component {
			return page(projectsTmpl, pageData{
				Site:     cfg,
				Meta:     homepage.PageMeta{Title: "Projects", URL: homepage.BuildURL(cfg.URL, "projects")},
				Projects: projects,
			})
		},
		Blog: func(list []homepage.Post, flash string) templ.Component {
			return page(blogTmpl, pageData{
				Site:  cfg,
				Meta:  homepage.PageMeta{Title: "Blog", URL: homepage.BuildURL(cfg.URL, "blog")},
				Posts: list,
				Flash: flash,
			})
		},
		Post: func(post homepage.Post, html string) templ.Component {
			return page(postTmpl, pageData{
				Site: cfg,
				Meta: homepage.PageMeta{
					Title:  post.Title,
					URL:    homepage.BuildURL(cfg.URL, "blog", post.Path),
					OGType: "article",
				},
				JSONLD: template.JS(homepage.BlogPostingJsonLD(post, cfg)),
				Post:   post,
				HTML:   template.HTML(html),
			})
		},
		NotFound: func() templ.Component {
			return page(notFoundTmpl, pageData{Site: cfg, Meta: homepage.PageMeta{Title: "Not found"}})
		},
		ServerError: func() templ.Component {
			return page(serverErrTmpl, pageData{Site: cfg, Meta: homepage.PageMeta{Title: "Error"}})
		},
	}
}
