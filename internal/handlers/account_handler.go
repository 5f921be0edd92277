package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account.
// A non-zero balance is booked as an opening transaction.
type CreateAccountRequest struct {
	Name    string          `json:"name" binding:"required,min=1,max=100"`
	Balance decimal.Decimal `json:"balance" binding:"money" swaggertype:"number"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// Balance is rejected when present.
type UpdateAccountRequest struct {
	Name    *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Balance *decimal.Decimal `json:"balance" swaggerignore:"true"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new account. A non-zero balance is recorded as an "Initial balance" transaction.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       user_id path int true "User ID"
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{user_id}/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), userID, req.Name, req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditCreateAccount,
		Resource:   models.AuditResourceAccount,
		ResourceID: account.ID,
		Changes:    map[string]any{"name": account.Name, "balance": account.Balance.String()},
	})

	c.JSON(http.StatusCreated, account)
}

// GetUserAccounts handles the retrieval of accounts for a user
// @Summary     List accounts
// @Description Get a paginated list of the user's accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       user_id path  int true  "User ID"
// @Param       skip    query int false "Items to skip (default 0)"
// @Param       limit   query int false "Items per page (default 100, max 1000)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{user_id}/accounts [get]
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		invalidInput(c, err)
		return
	}

	result, err := h.accountService.GetUserAccounts(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account for a user
// @Summary     Get account by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       user_id    path int true "User ID"
// @Param       account_id path int true "Account ID"
// @Success     200 {object} models.Account "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /users/{user_id}/accounts/{account_id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
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

	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateAccount handles renaming an account.
// @Summary     Update account
// @Description Rename an account. The balance is derived from transactions and cannot be set.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       user_id    path int                  true "User ID"
// @Param       account_id path int                  true "Account ID"
// @Param       request    body UpdateAccountRequest true "Updated account details"
// @Success     200 {object} models.Account "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input or balance given"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /users/{user_id}/accounts/{account_id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
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

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	if req.Balance != nil {
		respondWithError(c, apperrors.ErrBalanceNotEditable)
		return
	}
	if req.Name == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required"))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), userID, accountID, *req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditUpdateAccount,
		Resource:   models.AuditResourceAccount,
		ResourceID: accountID,
		Changes:    map[string]any{"name": account.Name},
	})

	c.JSON(http.StatusOK, account)
}

// DeleteAccount handles deleting an account.
// @Summary     Delete account
// @Description Delete an account. Depending on server policy an account with transactions is refused or deleted with them.
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       user_id    path int true "User ID"
// @Param       account_id path int true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Account still has transactions"
// @Router      /users/{user_id}/accounts/{account_id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
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

	if err := h.accountService.DeleteAccount(c.Request.Context(), userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditDeleteAccount,
		Resource:   models.AuditResourceAccount,
		ResourceID: accountID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}
