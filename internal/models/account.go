package models

import "github.com/shopspring/decimal"

// Account represents a financial account in the system. Balance always equals
// the signed sum of the transactions referencing the account; only the ledger
// engine writes it.
type Account struct {
	Base
	UserID  uint            `gorm:"not null;index" json:"owner_id"`
	Name    string          `gorm:"not null" json:"name"`
	Balance decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance"`

	// Version is bumped on every balance write and checked by the next one.
	Version uint `gorm:"not null" json:"-"`
}
