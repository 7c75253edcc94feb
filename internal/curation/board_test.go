package curation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ryeku/internal/models"
)

func src(id string, credibility int, selected bool) models.Source {
	return models.Source{
		ID:               id,
		Title:            "Source " + id,
		URL:              "https://example.com/" + id,
		CredibilityScore: credibility,
		Selected:         selected,
	}
}

func TestDefaultPolicy(t *testing.T) {
	b := NewBoard([]models.Source{
		src("a", 90, false), // high credibility -> trusted
		src("b", 60, false), // low credibility -> other
		src("c", 10, true),  // pre-selected -> trusted
		src("d", 80, false), // threshold is inclusive
	})

	require.Equal(t, []string{"a", "c", "d"}, ids(b.Trusted()))
	require.Equal(t, []string{"b"}, ids(b.Other()))
}

func TestMoveIsIdempotent(t *testing.T) {
	b := NewBoard([]models.Source{src("a", 90, false), src("b", 60, false)})

	require.NoError(t, b.MoveToTrusted("a")) // already there: no-op
	require.Equal(t, []string{"a"}, ids(b.Trusted()))

	require.NoError(t, b.MoveToTrusted("b"))
	require.Equal(t, []string{"a", "b"}, ids(b.Trusted()))
	require.Empty(t, b.Other())

	require.NoError(t, b.MoveToOther("a"))
	require.Equal(t, []string{"b"}, ids(b.Trusted()))
	require.Equal(t, []string{"a"}, ids(b.Other()))
}

func TestMoveUnknownSource(t *testing.T) {
	b := NewBoard([]models.Source{src("a", 90, false)})
	require.Error(t, b.MoveToOther("nope"))
}

func TestBucketsAlwaysPartition(t *testing.T) {
	sources := []models.Source{
		src("a", 90, false), src("b", 60, false), src("c", 85, false),
		src("d", 30, false), src("e", 75, true),
	}
	b := NewBoard(sources)

	moves := []struct {
		toTrusted bool
		id        string
	}{
		{false, "a"}, {true, "b"}, {true, "b"}, {false, "e"},
		{true, "d"}, {false, "c"}, {true, "a"}, {false, "d"},
	}
	for i, m := range moves {
		if m.toTrusted {
			require.NoError(t, b.MoveToTrusted(m.id))
		} else {
			require.NoError(t, b.MoveToOther(m.id))
		}

		all := append(ids(b.Trusted()), ids(b.Other())...)
		assert.Len(t, all, len(sources), "move %d: sources lost or duplicated", i)
		seen := map[string]bool{}
		for _, id := range all {
			assert.False(t, seen[id], "move %d: %s in both buckets", i, id)
			seen[id] = true
		}
	}
}

func TestReorder(t *testing.T) {
	b := NewBoard([]models.Source{
		src("a", 90, false), src("b", 85, false), src("c", 95, false),
	})

	require.NoError(t, b.Reorder(BucketTrusted, 0, 2))
	require.Equal(t, []string{"b", "c", "a"}, ids(b.Trusted()))

	require.NoError(t, b.Reorder(BucketTrusted, 2, 0))
	require.Equal(t, []string{"a", "b", "c"}, ids(b.Trusted()))

	require.NoError(t, b.Reorder(BucketTrusted, 1, 1)) // no-op
	require.Equal(t, []string{"a", "b", "c"}, ids(b.Trusted()))

	require.Error(t, b.Reorder(BucketTrusted, 0, 5))
	require.Error(t, b.Reorder(Bucket("nope"), 0, 1))
}

func TestConfirm(t *testing.T) {
	b := NewBoard([]models.Source{
		src("a", 90, false), src("b", 60, false), src("c", 85, false),
	})

	final, err := b.Confirm()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "b"}, ids(final))
	assert.True(t, final[0].Selected)
	assert.True(t, final[1].Selected)
	assert.False(t, final[2].Selected)
}

func TestConfirmRequiresTrustedSources(t *testing.T) {
	b := NewBoard([]models.Source{src("a", 20, false)})
	_, err := b.Confirm()
	require.ErrorIs(t, err, ErrNoTrustedSources)
}

func TestAddSkipsDuplicates(t *testing.T) {
	b := NewBoard([]models.Source{src("a", 90, false)})

	extra := []models.Source{
		src("a", 90, false), // duplicate id
		{ID: "x", URL: "https://example.com/a", CredibilityScore: 95}, // duplicate url
		src("b", 85, false),
		src("c", 40, false),
	}
	require.Equal(t, 2, b.Add(extra))
	require.Equal(t, []string{"a", "b"}, ids(b.Trusted()))
	require.Equal(t, []string{"c"}, ids(b.Other()))
}

func ids(sources []models.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.ID)
	}
	return out
}
