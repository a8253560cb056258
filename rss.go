package homepage

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate,omitempty"`
	GUID    string `xml:"guid"`
}

// renderRSS writes an RSS 2.0 feed, newest post first.
func (a *App) renderRSS(c echo.Context, list []Post) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		p := list[i]
		pubDate := ""
		if !p.CreatedAt.IsZero() {
			pubDate = p.CreatedAt.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, "blog", p.Path)
		items = append(items, rssItem{
			Title:   p.Title,
			Link:    postURL,
			PubDate: pubDate,
			GUID:    postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", feed)
}
