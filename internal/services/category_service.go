package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db  *gorm.DB
	uow database.UnitOfWork
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db, uow: database.NewUnitOfWork(db)}
}

// CreateCategory creates a new shared category.
func (s *categoryService) CreateCategory(ctx context.Context, name string, categoryType models.CategoryType) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income, expense or both")
	}

	category := &models.Category{Name: name, Type: categoryType}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories returns a paginated list of categories, optionally of one type.
func (s *categoryService) GetCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Category{})
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("name").Order("id").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID.
func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames a category and/or changes its type. A type change
// that would leave an existing transaction or budget filed under an
// incompatible category is refused with ErrCategoryInUse.
func (s *categoryService) UpdateCategory(ctx context.Context, categoryID uint, name *string, categoryType *models.CategoryType) (*models.Category, error) {
	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		updates["name"] = trimmed
	}
	if categoryType != nil {
		if !categoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income, expense or both")
		}
		updates["type"] = *categoryType
	}

	var category models.Category
	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		if err := lockCategory(tx, categoryID, &category); err != nil {
			return err
		}

		if categoryType != nil && *categoryType != category.Type {
			if err := ensureTypeChangeAllowed(tx, category.ID, *categoryType); err != nil {
				return err
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&category, category.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, serviceError(err)
	}

	return &category, nil
}

// DeleteCategory removes a category. Transactions filed under it become
// uncategorized in the same unit of work; a category that still carries a
// budget cannot be deleted.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID uint) error {
	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		var category models.Category
		if err := lockCategory(tx, categoryID, &category); err != nil {
			return err
		}

		var budgets int64
		if err := tx.Model(&models.Budget{}).Where("category_id = ?", category.ID).Count(&budgets).Error; err != nil {
			return err
		}
		if budgets > 0 {
			return apperrors.WithMessage(apperrors.ErrCategoryInUse, "Category is used by budgets; delete them first")
		}

		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	return serviceError(err)
}

// lockCategory reads a category and holds its row until the unit of work ends.
func lockCategory(tx *gorm.DB, categoryID uint, out *models.Category) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(out, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrCategoryNotFound
	}
	return err
}

// ensureTypeChangeAllowed reports ErrCategoryInUse if switching the category
// to next would make an existing transaction or budget incompatible.
func ensureTypeChangeAllowed(tx *gorm.DB, categoryID uint, next models.CategoryType) error {
	for _, tt := range []models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense} {
		if next.Accepts(tt) {
			continue
		}
		var count int64
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ? AND type = ?", categoryID, tt).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.WithMessage(apperrors.ErrCategoryInUse,
				"Category has "+string(tt)+" transactions and cannot become "+string(next))
		}
	}

	if !next.Accepts(models.TransactionTypeExpense) {
		var count int64
		if err := tx.Model(&models.Budget{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.WithMessage(apperrors.ErrCategoryInUse,
				"Category has budgets and cannot become "+string(next))
		}
	}
	return nil
}
