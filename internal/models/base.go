package models

import "time"

// Base contains common columns for all tables. Rows are hard-deleted so that
// a deleted transaction can never linger behind an account's balance.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
