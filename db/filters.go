package db

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// CategoryFilter keeps rows of a single category
type CategoryFilter struct {
	Category string
}

func (f *CategoryFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if f.Category != "" {
		sb.Where(sb.Equal("category", f.Category))
	}
}

// SearchFilter matches a term anywhere in the listed columns, case insensitive
type SearchFilter struct {
	Query   string
	Columns []string
}

func (f *SearchFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	term := strings.TrimSpace(f.Query)
	if term == "" || len(f.Columns) == 0 {
		return
	}
	pattern := "%" + strings.ToLower(term) + "%"
	conditions := make([]string, len(f.Columns))
	for i, column := range f.Columns {
		conditions[i] = sb.Like("LOWER("+column+")", pattern)
	}
	sb.Where(sb.Or(conditions...))
}

// PublishedFilter keeps only rows that are live on the site
type PublishedFilter struct{}

func (f *PublishedFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	sb.Where(sb.Equal("published", true))
}

// FeaturedFilter keeps only featured rows
type FeaturedFilter struct{}

func (f *FeaturedFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	sb.Where(sb.Equal("featured", true))
}
