package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/pagination"
	"evidence-backend/pkg/response"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	// audit entries are written by the services, read-only here
	entries := router.Group("/audit-entries")
	{
		entries.GET("", h.ListAuditEntries)
		entries.GET("/:id", h.GetAuditEntryByID)
	}
}

// ListAuditEntries returns audit log entries visible within the caller's scope
// @Summary      List audit entries
// @Tags         audit-entries
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.AuditEntryResponse}
// @Router       /audit-entries [get]
func (h *AuditHandler) ListAuditEntries(c *gin.Context) {
	p := pagination.Parse(c)

	entries, total, err := h.auditService.List(c.Request.Context(), middleware.Actor(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, entries, p.Page, p.Limit, total))
}

// GetAuditEntryByID fetches one audit entry within the caller's scope
// @Summary      Get audit entry by ID
// @Tags         audit-entries
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Audit entry ID"
// @Success      200  {object}  response.Response{data=service.AuditEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /audit-entries/{id} [get]
func (h *AuditHandler) GetAuditEntryByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.auditService.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}
