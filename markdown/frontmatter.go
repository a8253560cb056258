package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the optional YAML block at the top of a post file.
type FrontMatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

var yamlDelim = []byte("---")

// ParseFrontMatter separates a leading front-matter block from the Markdown
// body. Sources without one are returned unchanged. A leading "---" block
// only counts as front matter when it sets title or date; otherwise it is a
// thematic break and stays in the body.
func ParseFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	if !bytes.HasPrefix(src, yamlDelim) {
		return meta, src, nil
	}
	var keys map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &keys)
	if err != nil {
		return FrontMatter{}, src, fmt.Errorf("parse frontmatter: %w", err)
	}
	_, hasTitle := keys["title"]
	_, hasDate := keys["date"]
	if !hasTitle && !hasDate {
		return meta, src, nil
	}
	if _, err := frontmatter.Parse(bytes.NewReader(src), &meta); err != nil {
		return FrontMatter{}, src, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}

// SplitFrontMatter is ParseFrontMatter for callers that must not fail: a
// block that does not parse is left in the body.
func SplitFrontMatter(src []byte) (FrontMatter, []byte) {
	meta, body, err := ParseFrontMatter(src)
	if err != nil {
		return FrontMatter{}, src
	}
	return meta, body
}

// FirstHeading returns the text of the first level-1 ATX heading in body.
func FirstHeading(body []byte) string {
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if bytes.HasPrefix(line, []byte("# ")) {
			return string(bytes.TrimSpace(line[2:]))
		}
	}
	return ""
}
