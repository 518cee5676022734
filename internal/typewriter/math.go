package typewriter

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath marks $...$ and $$...$$ spans. They are rendered as spans for KaTeX on the client.
var KindMath = ast.NewNodeKind("Math")

type Math struct {
	ast.BaseInline
	Display bool
}

func (n *Math) Kind() ast.NodeKind { return KindMath }

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Display": boolString(n.Display)}, nil)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse returns nil when the delimiter is not closed on the same line, so a lone
// "$" (prices, half-streamed input) falls through as plain text.
func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 2 {
		return nil
	}

	open := 1
	if line[1] == '$' {
		open = 2
	}
	rest := line[open:]

	var end int
	if open == 2 {
		end = bytes.Index(rest, []byte("$$"))
	} else {
		end = bytes.IndexByte(rest, '$')
	}
	if end <= 0 {
		return nil
	}
	if open == 1 && (rest[0] == ' ' || rest[end-1] == ' ') {
		return nil
	}

	node := &Math{Display: open == 2}
	start := segment.Start + open
	node.AppendChild(node, ast.NewRawTextSegment(text.NewSegment(start, start+end)))
	block.Advance(open + end + open)
	return node
}

// KindMathBlock marks a $$ block whose delimiters sit on their own lines.
var KindMathBlock = ast.NewNodeKind("MathBlock")

type MathBlock struct {
	ast.BaseBlock
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var mathDelim = []byte("$$")

type mathBlockParser struct{}

func (b *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

// Open takes "$$" at the start of a line unless the same line also closes it; that
// form stays inline.
func (b *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], mathDelim) {
		return nil, parser.NoChildren
	}
	i := pos + len(mathDelim)
	rest := line[i:]
	if bytes.Contains(rest, mathDelim) {
		return nil, parser.NoChildren
	}

	node := &MathBlock{}
	if !util.IsBlank(rest) {
		start := segment.Start - segment.Padding + i
		node.Lines().Append(text.NewSegment(start, segment.Stop))
	}
	return node, parser.NoChildren
}

func (b *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	trimmed := util.TrimRightSpace(line)
	if bytes.HasSuffix(trimmed, mathDelim) {
		body := trimmed[:len(trimmed)-len(mathDelim)]
		if !util.IsBlank(body) {
			start := segment.Start - segment.Padding
			node.Lines().Append(text.NewSegment(start, start+len(body)))
		}
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
		return parser.Close
	}

	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (b *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (b *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

type mathRenderer struct{}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.render)
	reg.Register(KindMathBlock, r.renderBlock)
}

// renderBlock writes the raw lines so backslash escapes reach KaTeX untouched. An
// unterminated block renders whatever lines were read.
func (r *mathRenderer) renderBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<div class="math display">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *mathRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	class := "math inline"
	if n.(*Math).Display {
		class = "math display"
	}
	_, _ = w.WriteString(`<span class="` + class + `">`)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			_, _ = w.Write(util.EscapeHTML(t.Segment.Value(source)))
		}
	}
	_, _ = w.WriteString("</span>")
	return ast.WalkSkipChildren, nil
}

type mathExtension struct{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 650)),
		parser.WithInlineParsers(util.Prioritized(&mathParser{}, 150)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&mathRenderer{}, 500)))
}
