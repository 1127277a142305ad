package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"bare DOI", "10.1234/abc.DEF", "10.1234/abc.def"},
		{"https URL prefix", "https://doi.org/10.1234/Abc", "10.1234/abc"},
		{"http URL prefix", "http://doi.org/10.1234/abc", "10.1234/abc"},
		{"doi scheme prefix", "doi:10.1234/abc", "10.1234/abc"},
		{"surrounding whitespace", "  10.1234/abc  ", "10.1234/abc"},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDOI(tt.input))
		})
	}
}

func TestPaper_IdentityKey(t *testing.T) {
	t.Run("prefers DOI when present", func(t *testing.T) {
		p := &Paper{
			Title:         "Graphene Batteries",
			DOI:           "https://doi.org/10.1234/ABC",
			YearPublished: 2023,
		}
		assert.Equal(t, "doi:10.1234/abc", p.IdentityKey())
	})

	t.Run("falls back to title and year", func(t *testing.T) {
		p := &Paper{Title: "  Graphene Batteries ", YearPublished: 2023}
		assert.Equal(t, "title:graphene batteries|2023", p.IdentityKey())
	})

	t.Run("same DOI under different formats yields same key", func(t *testing.T) {
		a := &Paper{DOI: "https://doi.org/10.1234/abc"}
		b := &Paper{DOI: "10.1234/ABC"}
		assert.Equal(t, a.IdentityKey(), b.IdentityKey())
	})

	t.Run("empty when no DOI and no title", func(t *testing.T) {
		p := &Paper{YearPublished: 2023}
		assert.Empty(t, p.IdentityKey())
	})
}

func TestPaper_HasAbstract(t *testing.T) {
	abstract := "some abstract"
	empty := ""

	assert.True(t, (&Paper{Abstract: &abstract}).HasAbstract())
	assert.False(t, (&Paper{Abstract: &empty}).HasAbstract())
	assert.False(t, (&Paper{}).HasAbstract())
}
