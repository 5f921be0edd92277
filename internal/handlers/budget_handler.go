package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	CategoryID uint                `json:"category_id" binding:"required"`
	Amount     decimal.Decimal     `json:"amount" binding:"gt=0,money" swaggertype:"number"`
	Period     models.BudgetPeriod `json:"period" binding:"required,budget_period" enums:"weekly,monthly,yearly"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	CategoryID *uint                `json:"category_id"`
	Amount     *decimal.Decimal     `json:"amount" binding:"omitempty,gt=0,money" swaggertype:"number"`
	Period     *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period" enums:"weekly,monthly,yearly"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a budget on an expense category. One budget per category.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       user_id path int                 true "User ID"
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input or incompatible category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate budget"
// @Router      /users/{user_id}/budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), userID, req.CategoryID, req.Amount, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditCreateBudget,
		Resource:   models.AuditResourceBudget,
		ResourceID: budget.ID,
		Changes:    map[string]any{"category_id": req.CategoryID, "amount": req.Amount.String(), "period": req.Period},
	})

	c.JSON(http.StatusCreated, budget)
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     List budgets
// @Description Paginated list of budgets, each with its status for the current period
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       user_id path  int true  "User ID"
// @Param       skip    query int false "Items to skip (default 0)"
// @Param       limit   query int false "Items per page (default 100, max 1000)"
// @Success     200 {object} pagination.PageResponse[services.BudgetWithStatus] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /users/{user_id}/budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
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

	result, err := h.budgetService.GetUserBudgets(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget with its status.
// @Summary     Get budget status
// @Description Get a budget with spent, remaining, percentage and over-budget flag for the current period
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       user_id   path int true "User ID"
// @Param       budget_id path int true "Budget ID"
// @Success     200 {object} services.BudgetWithStatus "Budget with status"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /users/{user_id}/budgets/{budget_id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "budget_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetWithStatus(c.Request.Context(), userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       user_id   path int                 true "User ID"
// @Param       budget_id path int                 true "Budget ID"
// @Param       request   body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or incompatible category"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     409 {object} ErrorResponse "Duplicate budget"
// @Router      /users/{user_id}/budgets/{budget_id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "budget_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), userID, budgetID, services.BudgetUpdate{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Period:     req.Period,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditUpdateBudget,
		Resource:   models.AuditResourceBudget,
		ResourceID: budgetID,
		Changes:    map[string]any{"amount": budget.Amount.String(), "period": budget.Period},
	})

	c.JSON(http.StatusOK, budget)
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       user_id   path int true "User ID"
// @Param       budget_id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /users/{user_id}/budgets/{budget_id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "budget_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(c.Request.Context(), userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, services.AuditEntry{
		UserID:     userID,
		Action:     services.AuditDeleteBudget,
		Resource:   models.AuditResourceBudget,
		ResourceID: budgetID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted successfully"})
}
