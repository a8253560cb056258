package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindSuperscript is the node kind of SuperscriptNode.
var KindSuperscript = gast.NewNodeKind("Superscript")

// SuperscriptNode is an inline node rendered as <sup>.
type SuperscriptNode struct {
	gast.BaseInline
}

// Kind implements ast.Node.
func (n *SuperscriptNode) Kind() gast.NodeKind {
	return KindSuperscript
}

// Dump implements ast.Node.
func (n *SuperscriptNode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

type superscriptParser struct{}

func (s *superscriptParser) Trigger() []byte {
	return []byte{'^'}
}

// Parse handles "^word" (up to the next whitespace) and "^(a phrase)".
func (s *superscriptParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, segment := block.PeekLine()
	if len(line) < 2 {
		return nil
	}

	var start, stop, consumed int
	if line[1] == '(' {
		end := bytes.IndexByte(line[2:], ')')
		if end <= 0 {
			return nil
		}
		start, stop = 2, 2+end
		consumed = stop + 1
	} else {
		n := 1
		for n < len(line) && !util.IsSpace(line[n]) {
			n++
		}
		if n == 1 {
			return nil
		}
		start, stop = 1, n
		consumed = n
	}

	node := &SuperscriptNode{}
	node.AppendChild(node, gast.NewTextSegment(text.NewSegment(segment.Start+start, segment.Start+stop)))
	block.Advance(consumed)
	return node
}

type superscriptRenderer struct{}

func (r *superscriptRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSuperscript, r.render)
}

func (r *superscriptRenderer) render(w util.BufWriter, source []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		w.WriteString("<sup>")
	} else {
		w.WriteString("</sup>")
	}
	return gast.WalkContinue, nil
}

type superscript struct{}

// Superscript is a goldmark extension for caret superscripts.
var Superscript goldmark.Extender = &superscript{}

func (e *superscript) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&superscriptParser{}, 600),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&superscriptRenderer{}, 600),
	))
}
