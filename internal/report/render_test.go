package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLInjectsHeadingIDs(t *testing.T) {
	html, err := RenderHTML("# Title\n\n## Section 1\n\nbody")
	require.NoError(t, err)

	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, `<h2 id="section-1">Section 1</h2>`)
	assert.Contains(t, html, "<p>body</p>")
}

func TestRenderHTMLMatchesOutlineOnCollisions(t *testing.T) {
	content := "# Summary\n\n## Summary\n"
	html, err := RenderHTML(content)
	require.NoError(t, err)

	outline := ExtractOutline(content)
	require.Len(t, outline, 2)
	assert.Contains(t, html, `id="`+outline[0].ID+`"`)
	assert.Contains(t, html, `id="`+outline[1].ID+`"`)
}

func TestRenderHTMLKeepsCitationLinks(t *testing.T) {
	html, err := RenderHTML("Strong evidence [2](#citation-2) supports this.")
	require.NoError(t, err)
	assert.Contains(t, html, `<a href="#citation-2">2</a>`)
}
