package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/pagination"
	"evidence-backend/pkg/response"
)

type DepartmentHandler struct {
	deptService service.DepartmentService
}

func NewDepartmentHandler(deptService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptService: deptService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	depts := router.Group("/departments")
	{
		depts.GET("", h.ListDepartments)
		depts.GET("/:id", h.GetDepartmentByID)
		depts.POST("", h.CreateDepartment)
		depts.PUT("/:id", h.UpdateDepartment)
		depts.PATCH("/:id", h.UpdateDepartment)
		depts.DELETE("/:id", h.DeleteDepartment)
	}
}

// ListDepartments returns the caller's region departments; REGION_HEAD only
// @Summary      List departments
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.DepartmentResponse}
// @Failure      403    {object}  response.Response
// @Router       /departments [get]
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	p := pagination.Parse(c)

	depts, total, err := h.deptService.List(c.Request.Context(), middleware.Actor(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, depts, p.Page, p.Limit, total))
}

// GetDepartmentByID fetches one department; REGION_HEAD only
// @Summary      Get department by ID
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Department ID"
// @Success      200  {object}  response.Response{data=service.DepartmentResponse}
// @Failure      403  {object}  response.Response
// @Router       /departments/{id} [get]
func (h *DepartmentHandler) GetDepartmentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	dept, err := h.deptService.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dept))
}

// CreateDepartment creates a department inside the caller's own region
// @Summary      Create department
// @Tags         departments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDepartmentRequest  true  "Department payload"
// @Success      201      {object}  response.Response{data=service.DepartmentResponse}
// @Failure      403      {object}  response.Response
// @Router       /departments [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dept, err := h.deptService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dept))
}

// UpdateDepartment renames a department; REGION_HEAD only
// @Summary      Update department
// @Tags         departments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Department ID"
// @Param        payload  body      service.UpdateDepartmentRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.DepartmentResponse}
// @Failure      403      {object}  response.Response
// @Router       /departments/{id} [put]
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	dept, err := h.deptService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dept))
}

// DeleteDepartment removes a department; REGION_HEAD only
// @Summary      Delete department
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Department ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /departments/{id} [delete]
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deptService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Department deleted successfully"))
}
