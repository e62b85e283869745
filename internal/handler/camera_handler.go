package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/pagination"
	"evidence-backend/pkg/response"
)

type CameraHandler struct {
	cameraService service.CameraService
}

func NewCameraHandler(cameraService service.CameraService) *CameraHandler {
	return &CameraHandler{cameraService: cameraService}
}

func (h *CameraHandler) RegisterRoutes(router *gin.RouterGroup) {
	cameras := router.Group("/cameras")
	{
		cameras.GET("", h.ListCameras)
		cameras.GET("/:id", h.GetCameraByID)
		cameras.POST("", h.CreateCamera)
		cameras.PUT("/:id", h.UpdateCamera)
		cameras.PATCH("/:id", h.UpdateCamera)
		cameras.DELETE("/:id", h.DeleteCamera)
	}
}

// ListCameras returns registered cameras; REGION_HEAD only
// @Summary      List cameras
// @Tags         cameras
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.CameraResponse}
// @Failure      403    {object}  response.Response
// @Router       /cameras [get]
func (h *CameraHandler) ListCameras(c *gin.Context) {
	p := pagination.Parse(c)

	cameras, total, err := h.cameraService.List(c.Request.Context(), middleware.Actor(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, cameras, p.Page, p.Limit, total))
}

// GetCameraByID fetches one camera; REGION_HEAD only
// @Summary      Get camera by ID
// @Tags         cameras
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Camera ID"
// @Success      200  {object}  response.Response{data=service.CameraResponse}
// @Failure      403  {object}  response.Response
// @Router       /cameras/{id} [get]
func (h *CameraHandler) GetCameraByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	camera, err := h.cameraService.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, camera))
}

// CreateCamera registers a camera; REGION_HEAD only
// @Summary      Create camera
// @Tags         cameras
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCameraRequest  true  "Camera payload"
// @Success      201      {object}  response.Response{data=service.CameraResponse}
// @Failure      403      {object}  response.Response
// @Router       /cameras [post]
func (h *CameraHandler) CreateCamera(c *gin.Context) {
	var req service.CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	camera, err := h.cameraService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, camera))
}

// UpdateCamera modifies a camera; REGION_HEAD only
// @Summary      Update camera
// @Tags         cameras
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Camera ID"
// @Param        payload  body      service.UpdateCameraRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.CameraResponse}
// @Failure      403      {object}  response.Response
// @Router       /cameras/{id} [put]
func (h *CameraHandler) UpdateCamera(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	camera, err := h.cameraService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, camera))
}

// DeleteCamera removes a camera; REGION_HEAD only
// @Summary      Delete camera
// @Tags         cameras
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Camera ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /cameras/{id} [delete]
func (h *CameraHandler) DeleteCamera(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.cameraService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Camera deleted successfully"))
}
