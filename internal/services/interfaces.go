package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	AttemptLogin(ctx context.Context, username, password string) (*models.User, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID uint, name string, openingBalance decimal.Decimal) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(ctx context.Context, userID, accountID uint) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID, accountID uint, name string) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID uint) error
}

// CategoryServicer defines the contract for category-related business logic.
// Categories are shared by all users.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, name string, categoryType models.CategoryType) (*models.Category, error)
	GetCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, categoryID uint) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID uint, name *string, categoryType *models.CategoryType) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID uint) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
// FromDate and ToDate are both inclusive.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *uint
	AccountID  *uint
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID uint, in ledger.NewTransaction) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID uint) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID uint, page pagination.PageRequest, sort pagination.SortRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(ctx context.Context, userID, accountID uint, page pagination.PageRequest, sort pagination.SortRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(ctx context.Context, userID, transactionID uint, changes ledger.TransactionChanges) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uint) error
}

// BudgetWithStatus is a budget together with its spending in the current
// period.
type BudgetWithStatus struct {
	models.Budget
	Status ledger.BudgetStatus `json:"status"`
}

// BudgetUpdate holds the budget fields to change; nil fields are kept.
type BudgetUpdate struct {
	CategoryID *uint
	Amount     *decimal.Decimal
	Period     *models.BudgetPeriod
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID, categoryID uint, amount decimal.Decimal, period models.BudgetPeriod) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID uint, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithStatus], error)
	GetBudgetByID(ctx context.Context, userID, budgetID uint) (*models.Budget, error)
	GetBudgetWithStatus(ctx context.Context, userID, budgetID uint) (*BudgetWithStatus, error)
	UpdateBudget(ctx context.Context, userID, budgetID uint, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID uint) error
}

// Summary is the dashboard view of a user's finances. Everything in it is
// derived on read.
type Summary struct {
	TotalBalance decimal.Decimal    `json:"total_balance"`
	AccountCount int                `json:"account_count"`
	PeriodStart  time.Time          `json:"period_start"`
	PeriodEnd    time.Time          `json:"period_end"`
	MonthIncome  decimal.Decimal    `json:"month_income"`
	MonthExpense decimal.Decimal    `json:"month_expense"`
	MonthNet     decimal.Decimal    `json:"month_net"`
	Budgets      []BudgetWithStatus `json:"budgets"`
}

// SummaryServicer defines the contract for the dashboard summary.
type SummaryServicer interface {
	GetSummary(ctx context.Context, userID uint) (*Summary, error)
}

// LedgerServicer defines the contract for ledger maintenance.
type LedgerServicer interface {
	Reconcile(ctx context.Context, fix bool) (*ledger.ReconcileReport, error)
}

// AuditEntry describes one audited operation.
type AuditEntry struct {
	UserID     uint
	Action     string
	Resource   models.AuditResource
	ResourceID uint
	IPAddress  string
	RequestID  string
	Changes    map[string]any
}

// AuditServicer defines the contract for audit logging. Log never fails the
// caller; a write that cannot be recorded is logged and dropped.
type AuditServicer interface {
	Log(ctx context.Context, entry AuditEntry)
}
