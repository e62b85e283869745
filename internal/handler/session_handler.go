package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/pagination"
	"evidence-backend/pkg/response"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSessionByID)
		sessions.POST("", h.CreateSession)
		sessions.PUT("/:id", h.UpdateSession)
		sessions.PATCH("/:id", h.UpdateSession)
		sessions.DELETE("/:id", h.DeleteSession)
	}
}

// ListSessions returns login sessions visible within the caller's scope
// @Summary      List sessions
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.SessionResponse}
// @Router       /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	p := pagination.Parse(c)

	sessions, total, err := h.sessionService.List(c.Request.Context(), middleware.Actor(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, sessions, p.Page, p.Limit, total))
}

// GetSessionByID fetches one session within the caller's scope
// @Summary      Get session by ID
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=service.SessionResponse}
// @Failure      404  {object}  response.Response
// @Router       /sessions/{id} [get]
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// CreateSession opens a session row by hand, defaulting to the caller
// @Summary      Create session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSessionRequest  true  "Session payload"
// @Success      201      {object}  response.Response{data=service.SessionResponse}
// @Failure      400      {object}  response.Response
// @Router       /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, session))
}

// UpdateSession stamps logout or flips active on a session within the caller's scope
// @Summary      Update session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Session ID"
// @Param        payload  body      service.UpdateSessionRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.SessionResponse}
// @Failure      404      {object}  response.Response
// @Router       /sessions/{id} [put]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	session, err := h.sessionService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// DeleteSession removes a session within the caller's scope
// @Summary      Delete session
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Session deleted successfully"))
}
