package typewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderParagraphAndCode(t *testing.T) {
	r := NewRenderer()

	out := r.Render("Dùng `x := 1` để gán.")
	assert.Contains(t, out, `<p class="mb-3 leading-relaxed">`)
	assert.Contains(t, out, "<code")
	assert.Contains(t, out, "x := 1")
}

func TestRenderTable(t *testing.T) {
	r := NewRenderer()

	out := r.Render("| Môn | Điểm |\n|---|---|\n| Toán | 9 |\n")
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, `class="my-4 w-full border-collapse text-sm"`)
	assert.Contains(t, out, "<th")
	assert.Contains(t, out, "Toán")
}

func TestRenderMath(t *testing.T) {
	r := NewRenderer()

	out := r.Render("Công thức $a^2 + b^2$ và $$\\int_0^1 x\\,dx$$")
	assert.Contains(t, out, `<span class="math inline">a^2 + b^2</span>`)
	assert.Contains(t, out, `<span class="math display">`)
}

func TestRenderMathBlock(t *testing.T) {
	r := NewRenderer()

	out := r.Render("Tích phân:\n\n$$\n\\int_0^1 x\\,dx\n$$\n\nXong.")
	assert.Contains(t, out, `<div class="math display">\int_0^1 x\,dx`)
	assert.NotContains(t, out, "$$")
	assert.Contains(t, out, "Xong.")

	// opening and closing lines may carry content
	out = r.Render("$$a^2\n+ b^2$$")
	assert.Contains(t, out, `<div class="math display">a^2`)
	assert.Contains(t, out, "+ b^2</div>")
}

func TestRenderUnterminatedMathBlock(t *testing.T) {
	r := NewRenderer()

	var out string
	assert.NotPanics(t, func() {
		out = r.Render("$$\n\\frac{1}{2}\n")
	})
	assert.Contains(t, out, `<div class="math display">\frac{1}{2}`)
}

func TestRenderToleratesIncompleteInput(t *testing.T) {
	r := NewRenderer()

	assert.NotPanics(t, func() {
		r.Render("| Môn | Điể")
		r.Render("Giá là $5 và")
		r.Render("```go\nfunc main() {")
		r.Render("$$\\frac{1}{")
	})
	assert.Contains(t, r.Render("Giá là $5 và"), "$5")
	assert.Equal(t, "", r.Render(""))
}

func TestRenderSanitizes(t *testing.T) {
	r := NewRenderer()

	out := r.Render("<script>alert(1)</script>\n\n[link](javascript:alert(1))")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}
