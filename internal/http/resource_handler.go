package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/service"
)

// ResourceHandler expone list/add/update/delete de un recurso con dueno.
// El dueno siempre sale de CallerID, nunca del cuerpo del request.
type ResourceHandler[R any, F any, P any] struct {
	logger *zap.Logger
	svc    *service.OwnedService[R, F, P]
	key    string
}

func NewResourceHandler[R any, F any, P any](logger *zap.Logger, svc *service.OwnedService[R, F, P], key string) *ResourceHandler[R, F, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler[R, F, P]{logger: logger, svc: svc, key: key}
}

type NoteHandler = ResourceHandler[domain.Note, domain.NoteFields, domain.NotePatch]

func NewNoteHandler(logger *zap.Logger, svc *service.NoteService) *NoteHandler {
	return NewResourceHandler(logger, svc, "note")
}

// List maneja GET fetchall*.
func (h *ResourceHandler[R, F, P]) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), CallerID(c))
	if err != nil {
		writeError(c, h.logger, "list "+h.key, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create maneja POST add*.
func (h *ResourceHandler[R, F, P]) Create(c *gin.Context) {
	var fields F
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.logger.Warn("invalid create request", zap.String("kind", h.key), zap.Error(err))
		badRequest(c, "body", "must be a valid "+h.key+" object")
		return
	}
	record, err := h.svc.Create(c.Request.Context(), CallerID(c), fields)
	if err != nil {
		writeError(c, h.logger, "create "+h.key, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update maneja PUT update*/:id.
func (h *ResourceHandler[R, F, P]) Update(c *gin.Context) {
	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid update request", zap.String("kind", h.key), zap.Error(err))
		badRequest(c, "body", "must be a valid "+h.key+" object")
		return
	}
	record, err := h.svc.Update(c.Request.Context(), CallerID(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, "update "+h.key, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{h.key: record})
}

// Delete maneja DELETE delete*/:id.
func (h *ResourceHandler[R, F, P]) Delete(c *gin.Context) {
	record, err := h.svc.Delete(c.Request.Context(), CallerID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "delete "+h.key, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, h.key: record})
}
