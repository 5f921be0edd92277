package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeBoth    CategoryType = "both"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeBoth:
		return true
	}
	return false
}

// Accepts reports whether a transaction of type tt may be filed under a
// category of type t.
func (t CategoryType) Accepts(tt TransactionType) bool {
	switch t {
	case CategoryTypeBoth:
		return tt.Valid()
	case CategoryTypeIncome:
		return tt == TransactionTypeIncome
	case CategoryTypeExpense:
		return tt == TransactionTypeExpense
	}
	return false
}

// Category is shared by all users; (name, type) is unique.
type Category struct {
	Base
	Name string       `gorm:"not null;uniqueIndex:idx_categories_name_type" json:"name"`
	Type CategoryType `gorm:"not null;uniqueIndex:idx_categories_name_type" json:"type"`
}
