package query

import (
	"github.com/huandu/go-sqlbuilder"
)

// FilterStrategy adds WHERE conditions to the query
type FilterStrategy interface {
	// ApplyFilter adds filter conditions to the query builder
	ApplyFilter(sb *sqlbuilder.SelectBuilder)
}

// ListOptions narrows and pages a list query. A zero Limit returns every row.
type ListOptions struct {
	Filters []FilterStrategy
	Limit   int
	Offset  int
}

// Apply writes the filters and paging to the builder
func (o ListOptions) Apply(sb *sqlbuilder.SelectBuilder) {
	for _, filter := range o.Filters {
		if filter != nil {
			filter.ApplyFilter(sb)
		}
	}
	if o.Limit > 0 {
		sb.Limit(o.Limit)
		if o.Offset > 0 {
			sb.Offset(o.Offset)
		}
	}
}
