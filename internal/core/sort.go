package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByDismissed SortField = "dismissed"
	SortByCreated   SortField = "created"
	SortByType      SortField = "type"
	SortByLifetime  SortField = "lifetime"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns the listing default: most recently dismissed first.
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortByDismissed, Order: SortDesc}
}

// typeRank orders types by severity for sorting.
var typeRank = map[model.Type]int{
	model.TypeDefault: 0,
	model.TypeInfo:    1,
	model.TypeSuccess: 2,
	model.TypeWarning: 3,
	model.TypeError:   4,
}

// Sort sorts entries in place. Equal entries keep their order.
func Sort(entries []history.Entry, opts SortOptions) {
	slices.SortStableFunc(entries, func(a, b history.Entry) int {
		var c int
		switch opts.Field {
		case SortByCreated:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case SortByType:
			c = typeRank[a.Type] - typeRank[b.Type]
		case SortByLifetime:
			c = int(a.LifetimeMS - b.LifetimeMS)
		default:
			c = a.DismissedAt.Compare(b.DismissedAt)
		}
		if opts.Order == SortDesc {
			return -c
		}
		return c
	})
}

// ParseSortField parses a sort field string. Unknown values sort by dismissal time.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created", "created_at", "c":
		return SortByCreated
	case "type", "t":
		return SortByType
	case "lifetime", "shown", "l":
		return SortByLifetime
	default:
		return SortByDismissed
	}
}

// ParseSortOrder parses a sort order string. Unknown values sort descending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc
	default:
		return SortDesc
	}
}
