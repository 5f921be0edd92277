package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

// AdminHandler exposes ledger maintenance behind the admin API key.
type AdminHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{ledgerService: ledgerService, auditService: auditService}
}

type reconcileQuery struct {
	Fix bool `form:"fix"`
}

// Reconcile checks every account balance against its transactions
// @Summary     Reconcile ledger
// @Description Report accounts whose stored balance differs from the sum of their transactions. With fix=true the balances are corrected.
// @Tags        admin
// @Produce     json
// @Security    AdminAPIKey
// @Param       fix query bool false "Correct drifting balances"
// @Success     200 {object} ledger.ReconcileReport "Reconciliation report"
// @Failure     401 {object} ErrorResponse "Invalid or missing API key"
// @Failure     503 {object} ErrorResponse "Admin endpoints not configured"
// @Router      /admin/reconcile [get]
func (h *AdminHandler) Reconcile(c *gin.Context) {
	var q reconcileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidInput(c, err)
		return
	}

	report, err := h.ledgerService.Reconcile(c.Request.Context(), q.Fix)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if q.Fix && len(report.Drifts) > 0 {
		audit(c, h.auditService, services.AuditEntry{
			Action:   services.AuditReconcileLedger,
			Resource: models.AuditResourceLedger,
			Changes:  map[string]any{"fixed": len(report.Drifts)},
		})
	}

	c.JSON(http.StatusOK, report)
}
