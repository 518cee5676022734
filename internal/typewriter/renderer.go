package typewriter

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Classes applied to rendered nodes; they mirror the styles the web client ships.
var nodeClasses = map[ast.NodeKind]string{
	ast.KindParagraph:    "mb-3 leading-relaxed",
	ast.KindCodeSpan:     "rounded bg-slate-100 px-1 font-mono text-sm",
	east.KindTable:       "my-4 w-full border-collapse text-sm",
	east.KindTableHeader: "bg-slate-100",
	east.KindTableRow:    "border-b border-slate-200",
	east.KindTableCell:   "border border-slate-200 px-3 py-2",
}

type classTransformer struct{}

func (t *classTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if class, ok := nodeClasses[n.Kind()]; ok {
			n.SetAttributeString("class", []byte(class))
		}
		return ast.WalkContinue, nil
	})
}

// Renderer turns model output into sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, &mathExtension{}),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&classTransformer{}, 500)),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowElements("span")
	policy.AllowAttrs("class").Globally()

	return &Renderer{md: md, policy: policy}
}

// Render never fails: partial tables, open fences and lone "$" render best effort.
func (r *Renderer) Render(markdown string) string {
	if markdown == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "<p>" + html.EscapeString(markdown) + "</p>"
	}
	return r.policy.Sanitize(buf.String())
}
