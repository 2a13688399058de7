package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/service"
)

// BudgetHandler agrega el resumen a los endpoints CRUD de presupuesto.
type BudgetHandler struct {
	*ResourceHandler[domain.BudgetEntry, domain.BudgetFields, domain.BudgetPatch]
}

// NewBudgetHandler crea una instancia de BudgetHandler con dependencias necesarias.
func NewBudgetHandler(logger *zap.Logger, svc *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{ResourceHandler: NewResourceHandler(logger, svc, "budget")}
}

// Summary maneja GET /api/budget/summary.
func (h *BudgetHandler) Summary(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), CallerID(c))
	if err != nil {
		writeError(c, h.logger, "budget summary", err)
		return
	}
	c.JSON(http.StatusOK, domain.Summarize(entries))
}
