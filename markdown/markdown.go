// Package markdown renders blog post Markdown to HTML with syntax-highlighted
// fenced code blocks.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"reflect"
	"strings"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// engine is shared by all requests; goldmark converters are safe for
// concurrent use once built.
var engine = newEngine()

func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithParser(newParser()),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
			Superscript,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(wrapCodeBlock),
			),
		),
	)
}

// newParser builds the CommonMark parser with indented code blocks turned
// off: lines indented four or more spaces open a paragraph instead.
func newParser() parser.Parser {
	indented := reflect.TypeOf(parser.NewCodeBlockParser())
	blocks := parser.DefaultBlockParsers()
	for i, v := range blocks {
		if reflect.TypeOf(v.Value) == indented {
			blocks[i] = util.Prioritized(indentedParagraphParser{parser.NewParagraphParser()}, v.Priority)
		}
	}
	return parser.NewParser(
		parser.WithBlockParsers(blocks...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
}

// indentedParagraphParser is the paragraph parser, also offered lines the
// block parser loop would otherwise reserve for indented code.
type indentedParagraphParser struct {
	parser.BlockParser
}

func (indentedParagraphParser) CanAcceptIndentedLine() bool {
	return true
}

// wrapCodeBlock surrounds fenced code. Highlighted blocks get a div tagged
// with their language around chroma's <pre>; blocks chroma has no lexer for
// are emitted as plain <pre><code>.
func wrapCodeBlock(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	lang, _ := ctx.Language()
	escaped := html.EscapeString(string(lang))
	if ctx.Highlighted() {
		if entering {
			w.WriteString(`<div class="highlight language-` + escaped + `" data-lang="` + escaped + `">`)
		} else {
			w.WriteString("</div>\n")
		}
		return
	}
	if entering {
		if escaped != "" {
			w.WriteString(`<pre><code class="language-` + escaped + `">`)
		} else {
			w.WriteString("<pre><code>")
		}
		return
	}
	w.WriteString("</code></pre>\n")
}

// Render converts Markdown source to HTML. A leading front-matter block is
// dropped first. Render never fails: any input produces some HTML.
func Render(src []byte) string {
	_, body := SplitFrontMatter(src)
	var buf bytes.Buffer
	if err := engine.Convert(body, &buf); err != nil {
		// Convert only fails when the writer does; bytes.Buffer doesn't.
		return "<pre>" + html.EscapeString(string(body)) + "</pre>"
	}
	return buf.String()
}

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Render([]byte(src)))
		return err
	})
}

// StyleCSS returns the stylesheet for highlighted code blocks in the named
// chroma style. Unknown styles fall back to chroma's default.
func StyleCSS(name string) (string, error) {
	style := styles.Get(name)
	var b strings.Builder
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&b, style); err != nil {
		return "", err
	}
	return b.String(), nil
}
