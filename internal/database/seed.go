package database

import (
	"fmt"

	"gorm.io/gorm"

	"fintrack/internal/models"
)

// DefaultCategories are the shared categories every installation starts
// with. migrations/000002_seed_categories.up.sql inserts the same rows.
var DefaultCategories = []models.Category{
	{Name: "Housing", Type: models.CategoryTypeExpense},
	{Name: "Groceries", Type: models.CategoryTypeExpense},
	{Name: "Dining Out", Type: models.CategoryTypeExpense},
	{Name: "Transportation", Type: models.CategoryTypeExpense},
	{Name: "Utilities", Type: models.CategoryTypeExpense},
	{Name: "Entertainment", Type: models.CategoryTypeExpense},
	{Name: "Shopping", Type: models.CategoryTypeExpense},
	{Name: "Healthcare", Type: models.CategoryTypeExpense},
	{Name: "Education", Type: models.CategoryTypeExpense},
	{Name: "Personal Care", Type: models.CategoryTypeExpense},
	{Name: "Insurance", Type: models.CategoryTypeExpense},
	{Name: "Gifts & Donations", Type: models.CategoryTypeExpense},
	{Name: "Travel", Type: models.CategoryTypeExpense},
	{Name: "Subscriptions", Type: models.CategoryTypeExpense},
	{Name: "Other Expense", Type: models.CategoryTypeExpense},
	{Name: "Salary", Type: models.CategoryTypeIncome},
	{Name: "Freelance", Type: models.CategoryTypeIncome},
	{Name: "Investment Returns", Type: models.CategoryTypeIncome},
	{Name: "Gifts Received", Type: models.CategoryTypeIncome},
	{Name: "Refunds", Type: models.CategoryTypeIncome},
	{Name: "Rental Income", Type: models.CategoryTypeIncome},
	{Name: "Business Income", Type: models.CategoryTypeIncome},
	{Name: "Bonus", Type: models.CategoryTypeIncome},
	{Name: "Other Income", Type: models.CategoryTypeIncome},
	{Name: "Transfer", Type: models.CategoryTypeBoth},
}

// SeedCategories inserts any default category that is not present yet.
// Running it twice is harmless.
func SeedCategories(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range DefaultCategories {
			category := models.Category{Name: c.Name, Type: c.Type}
			if err := tx.Where("name = ? AND type = ?", c.Name, c.Type).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
			}
		}
		return nil
	})
}
