package catalog

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleNotes() []*models.Note {
	return []*models.Note{
		{ID: "note-1", Title: "Introduction to Neural Networks", Description: "Perceptrons, activation functions, and backpropagation.",
			Subject: "Artificial Intelligence", Tags: []string{"AI", "Neural Networks", "Deep Learning"},
			Rating: 4.7, DownloadCount: 1250, CreatedAt: day(2023, 1, 15)},
		{ID: "note-2", Title: "Data Structures Explained", Description: "Arrays, linked lists, trees, and hash tables.",
			Subject: "Computer Science", Tags: []string{"Data Structures", "Algorithms", "Computer Science"},
			Rating: 4.9, DownloadCount: 2100, CreatedAt: day(2023, 2, 20)},
		{ID: "note-3", Title: "Organic Chemistry Reaction Mechanisms", Description: "Substitution, elimination, and addition reactions.",
			Subject: "Chemistry", Tags: []string{"Organic Chemistry", "Reaction Mechanisms", "Chemistry"},
			Rating: 4.5, DownloadCount: 890, CreatedAt: day(2023, 3, 10)},
		{ID: "note-4", Title: "Calculus II - Integration Techniques", Description: "Substitution, parts and partial fractions.",
			Subject: "Mathematics", Tags: []string{"Calculus", "Integration", "Mathematics"},
			Rating: 4.8, DownloadCount: 1750, CreatedAt: day(2023, 4, 5)},
		{ID: "note-5", Title: "Modern Web Development with React", Description: "Hooks, context API, and state management.",
			Subject: "Web Development", Tags: []string{"React", "JavaScript", "Web Development"},
			Rating: 4.6, DownloadCount: 2300, CreatedAt: day(2023, 5, 12)},
	}
}

func ids(notes []*models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestFilter_ChemistryMatchesSingleNote(t *testing.T) {
	got := Filter(sampleNotes(), Criteria{Query: "chemistry"})
	assert.Equal(t, []string{"note-3"}, ids(got))

	got = Filter(sampleNotes(), Criteria{Query: "CHEMISTRY"})
	assert.Equal(t, []string{"note-3"}, ids(got))
}

func TestFilter_Cases(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"empty query matches all", Criteria{}, []string{"note-1", "note-2", "note-3", "note-4", "note-5"}},
		{"match in description", Criteria{Query: "hash tables"}, []string{"note-2"}},
		{"match in tag", Criteria{Query: "deep learn"}, []string{"note-1"}},
		{"match keeps storage order", Criteria{Query: "substitution"}, []string{"note-3", "note-4"}},
		{"no results", Criteria{Query: "astrophysics"}, []string{}},
		// tags match case-insensitively on purpose; "calculus" finds "Calculus"
		{"tag filter", Criteria{Tags: []string{"calculus", "React"}}, []string{"note-4", "note-5"}},
		{"subject filter", Criteria{Subject: "mathematics"}, []string{"note-4"}},
		{"query and subject", Criteria{Query: "substitution", Subject: "Chemistry"}, []string{"note-3"}},
		{"query and tag disagree", Criteria{Query: "react", Tags: []string{"AI"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleNotes(), tt.c)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_SubsetAndIdempotent(t *testing.T) {
	all := sampleNotes()
	queries := []string{"", "a", "chem", "ion", "zzz", "DATA", " "}

	for _, q := range queries {
		c := Criteria{Query: q}
		once := Filter(all, c)
		for _, n := range once {
			assert.Contains(t, all, n, "filter returned a note not in the input")
		}
		twice := Filter(once, c)
		if diff := cmp.Diff(ids(once), ids(twice)); diff != "" {
			t.Errorf("filter not idempotent for %q (-once +twice):\n%s", q, diff)
		}
	}
}

func TestFilter_SkipsNil(t *testing.T) {
	notes := append(sampleNotes(), nil)
	assert.Len(t, Filter(notes, Criteria{}), 5)
}

func TestSort_DownloadsScenario(t *testing.T) {
	notes := []*models.Note{
		{ID: "a", DownloadCount: 10},
		{ID: "b", DownloadCount: 50},
		{ID: "c", DownloadCount: 5},
	}

	got := Sort(notes, SortDownloads)

	counts := []int64{got[0].DownloadCount, got[1].DownloadCount, got[2].DownloadCount}
	assert.Equal(t, []int64{50, 10, 5}, counts)
	assert.Equal(t, []string{"a", "b", "c"}, ids(notes), "input must not be reordered")
}

func TestSort_Keys(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortRelevance, []string{"note-1", "note-2", "note-3", "note-4", "note-5"}},
		{SortNewest, []string{"note-5", "note-4", "note-3", "note-2", "note-1"}},
		{SortOldest, []string{"note-1", "note-2", "note-3", "note-4", "note-5"}},
		{SortDownloads, []string{"note-5", "note-2", "note-4", "note-1", "note-3"}},
		{SortRating, []string{"note-2", "note-4", "note-1", "note-5", "note-3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(sampleNotes(), tt.key)))
		})
	}
}

func TestSort_StableOnTies(t *testing.T) {
	notes := []*models.Note{
		{ID: "x", Rating: 4},
		{ID: "y", Rating: 5},
		{ID: "z", Rating: 4},
	}
	assert.Equal(t, []string{"y", "x", "z"}, ids(Sort(notes, SortRating)))
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, k)

	k, err = ParseSortKey(" Downloads ")
	require.NoError(t, err)
	assert.Equal(t, SortDownloads, k)

	_, err = ParseSortKey("popularity")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestQuery_Pagination(t *testing.T) {
	notes := sampleNotes()

	res := Query(notes, Criteria{Sort: SortOldest, Page: 2, PageSize: 2})
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, []string{"note-3", "note-4"}, ids(res.Notes))

	res = Query(notes, Criteria{Page: 9, PageSize: 2})
	assert.Empty(t, res.Notes)
	assert.Equal(t, 5, res.Total)

	res = Query(notes, Criteria{})
	assert.Equal(t, DefaultPageSize, res.PageSize)
	assert.Equal(t, 1, res.Page)
	assert.Len(t, res.Notes, 5)

	res = Query(notes, Criteria{PageSize: 10_000})
	assert.Equal(t, MaxPageSize, res.PageSize)
}

func TestQuery_HugePageIsEmpty(t *testing.T) {
	for _, page := range []int{math.MaxInt, math.MaxInt / 2, math.MaxInt/DefaultPageSize + 2} {
		res := Query(sampleNotes(), Criteria{Page: page})
		assert.Empty(t, res.Notes)
		assert.Equal(t, 5, res.Total)
		assert.Equal(t, page, res.Page)
	}

	res := Query(sampleNotes(), Criteria{Page: math.MaxInt, PageSize: MaxPageSize})
	assert.Empty(t, res.Notes)
}

func TestQuery_NoMatches(t *testing.T) {
	res := Query(sampleNotes(), Criteria{Query: "nothing-like-this"})
	assert.NotNil(t, res.Notes)
	assert.Empty(t, res.Notes)
	assert.Equal(t, 0, res.Pages)
}
