// Package catalog filters, sorts and pages note collections.
//
// Every function is pure: inputs are never mutated and the result only ever
// contains notes taken from the input.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

// DefaultPageSize matches the listing pages of the web client.
const DefaultPageSize = 12

// MaxPageSize caps caller supplied page sizes.
const MaxPageSize = 100

// SortKey selects the order applied after filtering.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortDownloads SortKey = "downloads"
	SortRating    SortKey = "rating"
)

// ParseSortKey maps user input to a SortKey. Empty input means relevance.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortNewest, SortOldest, SortDownloads, SortRating:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", common.ErrorValidation, s)
}

// Criteria describes a search over a note collection.
type Criteria struct {
	Query    string
	Tags     []string
	Subject  string
	Sort     SortKey
	Page     int
	PageSize int
}

// Result is one page of a Query.
type Result struct {
	Notes    []*models.Note `json:"notes"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Pages    int            `json:"pages"`
}

// Matches reports whether n satisfies the query, tag and subject parts of c.
func Matches(n *models.Note, c Criteria) bool {
	return matchesQuery(n, strings.ToLower(c.Query)) &&
		matchesTags(n, c.Tags) &&
		matchesSubject(n, c.Subject)
}

func matchesQuery(n *models.Note, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Description), q) ||
		strings.Contains(strings.ToLower(n.Subject), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func matchesTags(n *models.Note, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, t := range n.Tags {
		for _, w := range want {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

func matchesSubject(n *models.Note, subject string) bool {
	return subject == "" || strings.EqualFold(n.Subject, subject)
}

// Filter returns the notes matching c in their original order.
func Filter(notes []*models.Note, c Criteria) []*models.Note {
	out := make([]*models.Note, 0, len(notes))
	for _, n := range notes {
		if n != nil && Matches(n, c) {
			out = append(out, n)
		}
	}
	return out
}

// Sort returns a re-ordered copy of notes. Ties keep their input order.
func Sort(notes []*models.Note, key SortKey) []*models.Note {
	out := slices.Clone(notes)

	var cmp func(a, b *models.Note) int
	switch key {
	case SortNewest:
		cmp = func(a, b *models.Note) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortOldest:
		cmp = func(a, b *models.Note) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortDownloads:
		cmp = func(a, b *models.Note) int { return compareDesc(a.DownloadCount, b.DownloadCount) }
	case SortRating:
		cmp = func(a, b *models.Note) int { return compareDesc(a.Rating, b.Rating) }
	default:
		return out
	}

	slices.SortStableFunc(out, cmp)
	return out
}

func compareDesc[T int64 | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// Query filters, sorts and pages notes. Pages are 1-based; a page past the
// end yields an empty slice, not an error.
func Query(notes []*models.Note, c Criteria) Result {
	matched := Sort(Filter(notes, c), c.Sort)

	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	page := max(c.Page, 1)

	res := Result{
		Total:    len(matched),
		Page:     page,
		PageSize: size,
		Pages:    (len(matched) + size - 1) / size,
		Notes:    []*models.Note{},
	}

	// compare pages before multiplying so a huge page cannot overflow
	if page-1 < res.Pages {
		start := (page - 1) * size
		end := min(start+size, len(matched))
		res.Notes = matched[start:end]
	}
	return res
}
