package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/pagination"
	"evidence-backend/pkg/response"
)

type CaseHandler struct {
	caseService service.CaseService
}

func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

func (h *CaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	cases := router.Group("/cases")
	{
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCaseByID)
		cases.POST("", h.CreateCase)
		cases.PUT("/:id", h.UpdateCase)
		cases.PATCH("/:id", h.UpdateCase)
		cases.DELETE("/:id", h.DeleteCase)
	}
}

// ListCases returns cases visible within the caller's scope
// @Summary      List cases
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.CaseResponse}
// @Router       /cases [get]
func (h *CaseHandler) ListCases(c *gin.Context) {
	p := pagination.Parse(c)

	cases, total, err := h.caseService.List(c.Request.Context(), middleware.Actor(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, cases, p.Page, p.Limit, total))
}

// GetCaseByID fetches one case within the caller's scope
// @Summary      Get case by ID
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  response.Response{data=service.CaseResponse}
// @Failure      404  {object}  response.Response
// @Router       /cases/{id} [get]
func (h *CaseHandler) GetCaseByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	cs, err := h.caseService.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

// CreateCase opens a case with the caller as creator and investigator
// @Summary      Create case
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCaseRequest  true  "Case payload"
// @Success      201      {object}  response.Response{data=service.CaseResponse}
// @Failure      400      {object}  response.Response
// @Router       /cases [post]
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req service.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cs, err := h.caseService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cs))
}

// UpdateCase modifies a case; only its creator may do so
// @Summary      Update case
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Case ID"
// @Param        payload  body      service.UpdateCaseRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.CaseResponse}
// @Failure      403      {object}  response.Response
// @Router       /cases/{id} [put]
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	cs, err := h.caseService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

// DeleteCase removes a case; only its creator may do so
// @Summary      Delete case
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /cases/{id} [delete]
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.caseService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Case deleted successfully"))
}
