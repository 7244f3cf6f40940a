package feed

import (
	"slices"
	"sort"
	"strings"

	"devwrite/internal/domain/content"
)

// DefaultCategory matches every category.
const DefaultCategory = "all"

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Criteria narrows and orders a feed. The zero value lists everything,
// newest first.
type Criteria struct {
	Keyword  string `form:"q" json:"keyword"`
	Tag      string `form:"tag" json:"tag,omitempty"`
	Category string `form:"category" json:"category"`
	Order    Order  `form:"order" json:"order"`
}

func (c Criteria) withDefaults() Criteria {
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if c.Order == "" {
		c.Order = OrderDesc
	}
	return c
}

// Filter returns the posts matching c in display order. posts is not
// modified.
func Filter(posts []content.PostSummary, c Criteria) []content.PostSummary {
	c = c.withDefaults()
	out := slices.Clone(posts)

	if kw := strings.ToLower(c.Keyword); kw != "" {
		out = keep(out, func(p content.PostSummary) bool {
			hay := p.Title + p.Summary + strings.Join(p.Tags, " ")
			return strings.Contains(strings.ToLower(hay), kw)
		})
	}
	if c.Tag != "" {
		out = keep(out, func(p content.PostSummary) bool {
			return slices.Contains(p.Tags, c.Tag)
		})
	}
	if c.Category != DefaultCategory {
		out = keep(out, func(p content.PostSummary) bool {
			return slices.Contains(p.Category, c.Category)
		})
	}

	// reversing before the stable sort decides which of two posts with the
	// same date comes first
	if c.Order != OrderDesc {
		slices.Reverse(out)
	}
	asc := c.Order == OrderAsc
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Date.Time(), out[j].Date.Time()
		if asc {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
	return out
}

func keep(posts []content.PostSummary, ok func(content.PostSummary) bool) []content.PostSummary {
	out := posts[:0]
	for _, p := range posts {
		if ok(p) {
			out = append(out, p)
		}
	}
	return out
}
