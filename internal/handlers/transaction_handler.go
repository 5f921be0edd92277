package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	AccountID   uint                   `json:"account_id" binding:"required"`
	CategoryID  *uint                  `json:"category_id"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type" enums:"income,expense"`
	Amount      decimal.Decimal        `json:"amount" binding:"gt=0,money" swaggertype:"number"`
	Description string                 `json:"description" binding:"max=500"`
	Date        *string                `json:"date" example:"2024-03-15"`
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Absent fields are kept; "category_id": null clears the category.
type UpdateTransactionRequest struct {
	AccountID   *uint                   `json:"account_id"`
	CategoryID  optionalID              `json:"category_id" swaggertype:"integer"`
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type" enums:"income,expense"`
	Amount      *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0,money" swaggertype:"number"`
	Description *string                 `json:"description" binding:"omitempty,max=500"`
	Date        *string                 `json:"date"`
}

type transactionListQuery struct {
	pagination.PageRequest
	pagination.SortRequest
	StartDate  string                  `form:"start_date"`
	EndDate    string                  `form:"end_date"`
	Type       *models.TransactionType `form:"transaction_type" binding:"omitempty,transaction_type"`
	CategoryID *uint                   `form:"category_id"`
	AccountID  *uint                   `form:"account_id"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense on an account. The account balance moves in the same unit of work.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       user_id path int                      true "User ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or incompatible category"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     409 {object} ErrorResponse "Concurrent update, retry"
// @Router      /users/{user_id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	in := ledger.NewTransaction{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != nil && *req.Date != "" {
		date, _, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		in.Date = date
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditCreateTransaction,
		Resource:   models.AuditResourceTransaction,
		ResourceID: transaction.ID,
		Changes:    map[string]any{"type": transaction.Type, "amount": transaction.Amount.String(), "account_id": transaction.AccountID},
	})

	c.JSON(http.StatusCreated, transaction)
}

// GetUserTransactions lists the user's transactions
// @Summary     List transactions
// @Description Filtered, sorted and paginated list of the user's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       user_id          path  int    true  "User ID"
// @Param       start_date       query string false "From date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       end_date         query string false "To date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       transaction_type query string false "Filter by type" Enums(income, expense)
// @Param       category_id      query int    false "Filter by category ID"
// @Param       account_id       query int    false "Filter by account ID"
// @Param       sort_by          query string false "Sort column (default date)" Enums(date, amount)
// @Param       order            query string false "Sort order (default desc)" Enums(asc, desc)
// @Param       skip             query int    false "Items to skip (default 0)"
// @Param       limit            query int    false "Items per page (default 100, max 1000)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /users/{user_id}/transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	q, filter, err := bindTransactionList(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, q.PageRequest, q.SortRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountTransactions lists one account's transactions
// @Summary     List account transactions
// @Description Same filters as the user transaction list, restricted to one account
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       user_id    path int true "User ID"
// @Param       account_id path int true "Account ID"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /users/{user_id}/accounts/{account_id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	q, filter, err := bindTransactionList(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetAccountTransactions(c.Request.Context(), userID, accountID, q.PageRequest, q.SortRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindTransactionList reads the list query. A date-only end_date covers the
// whole day.
func bindTransactionList(c *gin.Context) (transactionListQuery, services.TransactionFilter, error) {
	var q transactionListQuery
	var filter services.TransactionFilter

	if err := c.ShouldBindQuery(&q); err != nil {
		return q, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if q.SortBy != "" && q.SortBy != "date" && q.SortBy != "amount" {
		return q, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "sort_by must be date or amount")
	}

	if q.StartDate != "" {
		t, _, err := parseFlexibleTime(q.StartDate)
		if err != nil {
			return q, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date: "+err.Error())
		}
		filter.FromDate = &t
	}
	if q.EndDate != "" {
		t, dateOnly, err := parseFlexibleTime(q.EndDate)
		if err != nil {
			return q, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date: "+err.Error())
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.ToDate = &t
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return q, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date is before start_date")
	}

	filter.Type = q.Type
	filter.CategoryID = q.CategoryID
	filter.AccountID = q.AccountID
	return q, filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       user_id        path int true "User ID"
// @Param       transaction_id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /users/{user_id}/transactions/{transaction_id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "transaction_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Change any fields of a transaction. Balances of the old and new account are corrected in the same unit of work.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       user_id        path int                      true "User ID"
// @Param       transaction_id path int                      true "Transaction ID"
// @Param       request        body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or incompatible category"
// @Failure     404 {object} ErrorResponse "Transaction, account or category not found"
// @Failure     409 {object} ErrorResponse "Concurrent update, retry"
// @Router      /users/{user_id}/transactions/{transaction_id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "transaction_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	changes := ledger.TransactionChanges{
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.CategoryID.Set {
		changes.CategoryID = &req.CategoryID.Value
	}
	if req.Date != nil {
		date, _, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		changes.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditUpdateTransaction,
		Resource:   models.AuditResourceTransaction,
		ResourceID: transactionID,
		Changes:    map[string]any{"type": transaction.Type, "amount": transaction.Amount.String(), "account_id": transaction.AccountID},
	})

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and reverse its effect on the account balance
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       user_id        path int true "User ID"
// @Param       transaction_id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Concurrent update, retry"
// @Router      /users/{user_id}/transactions/{transaction_id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "transaction_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditDeleteTransaction,
		Resource:   models.AuditResourceTransaction,
		ResourceID: transactionID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
