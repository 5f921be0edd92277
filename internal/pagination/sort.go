package pagination

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortRequest holds ordering parameters parsed from query strings. Allowed
// columns are decided by the caller through Order.
type SortRequest struct {
	SortBy string `form:"sort_by"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// Order returns a GORM scope ordering by SortBy when it is one of allowed,
// else by fallback. Order defaults to descending. Ties are broken by id so
// pages are stable.
func Order(req SortRequest, fallback string, allowed ...string) func(db *gorm.DB) *gorm.DB {
	column := fallback
	for _, a := range allowed {
		if req.SortBy == a {
			column = a
			break
		}
	}
	desc := req.Order != "asc"

	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
}
