// Package curation partitions a session's source list into the two buckets
// the user curates before generation: "trusted" and "other".
package curation

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"ryeku/internal/models"
)

type Bucket string

const (
	BucketTrusted Bucket = "trusted"
	BucketOther   Bucket = "other"
)

// Sources at or above this credibility start in the trusted bucket.
const trustedCredibility = 80

var ErrNoTrustedSources = errors.New("select at least one trusted source")

// Board holds the two curation buckets. Together they always partition the
// source list exactly: every source is in one bucket, none in both.
//
// Board is not safe for concurrent use; the owning session serializes access.
type Board struct {
	trusted []models.Source
	other   []models.Source
}

// NewBoard classifies sources with the default policy: a source starts
// trusted if it arrived selected or its credibility is high enough. The
// default is applied exactly once, here; every later change is user-driven.
func NewBoard(sources []models.Source) *Board {
	b := &Board{}
	for _, s := range sources {
		b.place(s)
	}
	return b
}

func (b *Board) place(s models.Source) {
	if s.Selected || s.CredibilityScore >= trustedCredibility {
		b.trusted = append(b.trusted, s)
	} else {
		b.other = append(b.other, s)
	}
}

// MoveToTrusted moves the source to the end of the trusted bucket. Moving a
// source already there is a no-op.
func (b *Board) MoveToTrusted(id string) error {
	return b.move(id, &b.other, &b.trusted)
}

// MoveToOther moves the source to the end of the other bucket. Moving a
// source already there is a no-op.
func (b *Board) MoveToOther(id string) error {
	return b.move(id, &b.trusted, &b.other)
}

func (b *Board) move(id string, from, to *[]models.Source) error {
	if lo.ContainsBy(*to, byID(id)) {
		return nil
	}
	s, i, ok := lo.FindIndexOf(*from, byID(id))
	if !ok {
		return fmt.Errorf("unknown source %q", id)
	}
	*from = append((*from)[:i], (*from)[i+1:]...)
	*to = append(*to, s)
	return nil
}

// Reorder repositions a source within one bucket. Cross-bucket reordering is
// a move followed by a Reorder in the target bucket.
func (b *Board) Reorder(bucket Bucket, from, to int) error {
	list, err := b.bucket(bucket)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(*list) || to < 0 || to >= len(*list) {
		return fmt.Errorf("reorder %s: index out of range", bucket)
	}
	if from == to {
		return nil
	}
	s := (*list)[from]
	*list = append((*list)[:from], (*list)[from+1:]...)
	*list = append((*list)[:to], append([]models.Source{s}, (*list)[to:]...)...)
	return nil
}

// Add appends sources the board has not seen yet (by id or URL), classifying
// each with the same default policy used at load. Returns how many were added.
func (b *Board) Add(sources []models.Source) int {
	added := 0
	for _, s := range sources {
		if b.contains(s) {
			continue
		}
		b.place(s)
		added++
	}
	return added
}

func (b *Board) contains(s models.Source) bool {
	match := func(existing models.Source) bool {
		return existing.ID == s.ID || existing.URL == s.URL
	}
	return lo.ContainsBy(b.trusted, match) || lo.ContainsBy(b.other, match)
}

// Confirm produces the final ordered source list: the trusted bucket (each
// marked selected) followed by the other bucket (each unselected). Fails when
// no source is trusted.
func (b *Board) Confirm() ([]models.Source, error) {
	if len(b.trusted) == 0 {
		return nil, ErrNoTrustedSources
	}
	final := make([]models.Source, 0, len(b.trusted)+len(b.other))
	for _, s := range b.trusted {
		s.Selected = true
		final = append(final, s)
	}
	for _, s := range b.other {
		s.Selected = false
		final = append(final, s)
	}
	return final, nil
}

// Trusted returns a copy of the trusted bucket in order.
func (b *Board) Trusted() []models.Source {
	return append([]models.Source(nil), b.trusted...)
}

// Other returns a copy of the other bucket in order.
func (b *Board) Other() []models.Source {
	return append([]models.Source(nil), b.other...)
}

// Len returns the total number of sources across both buckets.
func (b *Board) Len() int {
	return len(b.trusted) + len(b.other)
}

func (b *Board) bucket(bucket Bucket) (*[]models.Source, error) {
	switch bucket {
	case BucketTrusted:
		return &b.trusted, nil
	case BucketOther:
		return &b.other, nil
	default:
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
}

func byID(id string) func(models.Source) bool {
	return func(s models.Source) bool { return s.ID == id }
}
