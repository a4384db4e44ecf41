package pagination

import (
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	Limit    int
	SearchBy string
	Search   string
	SortBy   string
	SortDesc bool
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset converts the page number into a row offset. Pages are 1-based.
func (p Params) Offset() int {
	page := p.Page
	if page <= 1 {
		return 0
	}
	return (page - 1) * NormalizeLimit(p.Limit)
}

// OrderClause renders the validated sort field into a SQL ORDER BY fragment.
// Call ValidateFields first; the field name is interpolated.
func (p Params) OrderClause(fallback string) string {
	field := p.SortBy
	if field == "" {
		field = fallback
	}
	if field == "" {
		return ""
	}
	if p.SortDesc {
		return field + " DESC"
	}
	return field + " ASC"
}

// ValidateFields checks SearchBy/SortBy against per-entity allow-lists. Field
// names coming off the wire are never passed to the database unchecked.
func (p Params) ValidateFields(searchable, sortable []string) error {
	if p.SearchBy != "" && !contains(searchable, p.SearchBy) {
		return fmt.Errorf("cannot search by field %q, allowed: %s", p.SearchBy, strings.Join(searchable, ", "))
	}
	if p.SortBy != "" && !contains(sortable, p.SortBy) {
		return fmt.Errorf("cannot sort by field %q, allowed: %s", p.SortBy, strings.Join(sortable, ", "))
	}
	return nil
}

func contains(fields []string, candidate string) bool {
	for _, field := range fields {
		if field == candidate {
			return true
		}
	}
	return false
}
