package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismart/research-discovery-service/internal/domain"
)

func TestDeduplicate(t *testing.T) {
	t.Run("higher score wins regardless of order", func(t *testing.T) {
		low := &domain.Paper{DOI: "10.1/x", QualityScore: 80, SourceKeyword: "graphene"}
		high := &domain.Paper{DOI: "10.1/x", QualityScore: 95, SourceKeyword: "battery"}

		got := Deduplicate([]*domain.Paper{low, high})
		require.Len(t, got, 1)
		assert.Same(t, high, got[0])

		got = Deduplicate([]*domain.Paper{high, low})
		require.Len(t, got, 1)
		assert.Same(t, high, got[0])
	})

	t.Run("doi match ignores url prefix and case", func(t *testing.T) {
		a := &domain.Paper{DOI: "https://doi.org/10.1/ABC", QualityScore: 50}
		b := &domain.Paper{DOI: "10.1/abc", QualityScore: 60}
		got := Deduplicate([]*domain.Paper{a, b})
		require.Len(t, got, 1)
		assert.Same(t, b, got[0])
	})

	t.Run("equal score abstract breaks tie", func(t *testing.T) {
		abstract := "text"
		bare := &domain.Paper{DOI: "10.2/y", QualityScore: 70}
		rich := &domain.Paper{DOI: "10.2/y", QualityScore: 70, Abstract: &abstract}
		got := Deduplicate([]*domain.Paper{bare, rich})
		require.Len(t, got, 1)
		assert.Same(t, rich, got[0])
	})

	t.Run("equal score keeps first when neither has abstract", func(t *testing.T) {
		first := &domain.Paper{DOI: "10.3/z", QualityScore: 70}
		second := &domain.Paper{DOI: "10.3/z", QualityScore: 70}
		got := Deduplicate([]*domain.Paper{first, second})
		require.Len(t, got, 1)
		assert.Same(t, first, got[0])
	})

	t.Run("no doi falls back to title and year", func(t *testing.T) {
		a := &domain.Paper{Title: "Same Work", YearPublished: 2020, QualityScore: 10}
		b := &domain.Paper{Title: "same work", YearPublished: 2020, QualityScore: 20}
		c := &domain.Paper{Title: "Same Work", YearPublished: 2021, QualityScore: 5}
		got := Deduplicate([]*domain.Paper{a, b, c})
		require.Len(t, got, 2)
		assert.Same(t, b, got[0])
		assert.Same(t, c, got[1])
	})

	t.Run("no identity passes through", func(t *testing.T) {
		a := &domain.Paper{QualityScore: 1}
		b := &domain.Paper{QualityScore: 2}
		got := Deduplicate([]*domain.Paper{a, b})
		assert.Len(t, got, 2)
	})

	t.Run("arrival order preserved", func(t *testing.T) {
		papers := []*domain.Paper{
			{DOI: "10.4/a", QualityScore: 1},
			{DOI: "10.4/b", QualityScore: 2},
			{DOI: "10.4/a", QualityScore: 9},
			{DOI: "10.4/c", QualityScore: 3},
		}
		got := Deduplicate(papers)
		require.Len(t, got, 3)
		assert.Equal(t, "10.4/a", got[0].DOI)
		assert.Equal(t, "10.4/b", got[1].DOI)
		assert.Equal(t, "10.4/c", got[2].DOI)
		assert.Equal(t, 9.0, got[0].QualityScore)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Deduplicate(nil))
	})
}
