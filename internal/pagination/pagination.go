package pagination

import (
	"gorm.io/gorm"
)

// Limits applied when the client does not ask for, or overshoots, a page size.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// PageRequest holds skip/limit parameters parsed from query strings.
type PageRequest struct {
	Skip  int `form:"skip" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Defaults fills in the default limit and clamps an oversized one.
func (p *PageRequest) Defaults() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// PageResponse wraps a list of items with paging metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Skip       int   `json:"skip"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page PageRequest, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Skip:       page.Skip,
		Limit:      page.Limit,
		TotalItems: totalItems,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Skip).Limit(req.Limit)
	}
}
