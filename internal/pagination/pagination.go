package pagination

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ValidationError marks caller mistakes (bad page, limit or sort key) so the
// HTTP layer can map them to 400 instead of 500.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	ErrInvalidPage  = ValidationError("page must be a positive integer")
	ErrInvalidLimit = ValidationError("limit must be a positive integer")
)

// Options are the caller-supplied paging and sorting knobs. Zero values for
// Page/Limit mean "use defaults"; negative values are rejected, not clamped.
type Options struct {
	SortBy string
	Limit  int
	Page   int
}

// Page is the response envelope for paginated queries.
type Page[T any] struct {
	Results      []T   `json:"results"`
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
}

// parseSort turns "field:direction" into an ORDER BY clause. The allow-list
// maps exposed field names to their columns; unknown fields and directions
// are rejected rather than silently ignored.
func parseSort(sortBy string, sortable map[string]string) (string, error) {
	if sortBy == "" {
		return "created_at DESC", nil
	}

	field, dir, found := strings.Cut(sortBy, ":")
	if !found {
		dir = "asc"
	}
	column, ok := sortable[field]
	if !ok {
		return "", ValidationError(fmt.Sprintf("cannot sort by %q", field))
	}
	switch dir {
	case "asc":
		return column + " ASC", nil
	case "desc":
		return column + " DESC", nil
	default:
		return "", ValidationError(fmt.Sprintf("invalid sort direction %q", dir))
	}
}

// Paginate runs the prepared query with count, order, limit and offset applied,
// returning the standard envelope. The query must already carry its filters.
func Paginate[T any](query *gorm.DB, opts Options, sortable map[string]string) (*Page[T], error) {
	page := opts.Page
	if page == 0 {
		page = DefaultPage
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	order, err := parseSort(opts.SortBy, sortable)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var results []T
	if err := query.Order(order).Limit(limit).Offset((page - 1) * limit).Find(&results).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &Page[T]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}, nil
}
