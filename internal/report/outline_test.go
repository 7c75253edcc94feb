package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOutline(t *testing.T) {
	outline := ExtractOutline("# Title\n\n## Section 1\n\nbody")
	require.Equal(t, []Heading{
		{ID: "title", Text: "Title", Level: 1},
		{ID: "section-1", Text: "Section 1", Level: 2},
	}, outline)
}

func TestExtractOutlineIsIdempotent(t *testing.T) {
	content := "# Title\n\n## Section 1\n\nbody\n\n### Deep dive\n"
	first := ExtractOutline(content)
	second := ExtractOutline(content)
	require.Equal(t, first, second)
}

func TestExtractOutlineLevels(t *testing.T) {
	content := "# One\n## Two\n### Three\n#### Four\n##### Five\n###### Six\n####### Seven\n#NoSpace\nplain text"
	outline := ExtractOutline(content)
	require.Len(t, outline, 6, "only 1-6 hashes followed by whitespace are headings")
	for i, h := range outline {
		assert.Equal(t, i+1, h.Level)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Title", "title"},
		{"Section 1", "section-1"},
		{"AI & Healthcare: 2024!", "ai-healthcare-2024"},
		{"  spaced   out  ", "-spaced-out-"},
		{"already-hyphenated", "already-hyphenated"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Slugify(c.text), "Slugify(%q)", c.text)
	}
}

func TestOutlineDisambiguatesCollidingSlugs(t *testing.T) {
	content := "# Summary\n## Summary\n## Summary\n"
	outline := ExtractOutline(content)
	require.Equal(t, "summary", outline[0].ID)
	require.Equal(t, "summary-2", outline[1].ID)
	require.Equal(t, "summary-3", outline[2].ID)
}

func TestExtractOutlineTrimsHeadingText(t *testing.T) {
	outline := ExtractOutline("##   Padded heading   \n")
	require.Len(t, outline, 1)
	assert.Equal(t, "Padded heading", outline[0].Text)
	assert.Equal(t, "padded-heading", outline[0].ID)
}
