package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Table(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("| Field | Value |\n|---|---|\n| token | TOK1 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>TOK1</td>")
}

func TestRenderer_StripsScripts(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hello <script>alert(1)</script> **world**")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<strong>world</strong>")
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a\|b c`, EscapeCell("a|b\nc"))
	assert.Equal(t, "-", EscapeCell("  "))
	assert.Equal(t, "'x'", EscapeCell("`x`"))
}
