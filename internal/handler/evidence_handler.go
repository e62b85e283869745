package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidence-backend/internal/middleware"
	"evidence-backend/internal/service"
	"evidence-backend/pkg/pagination"
	"evidence-backend/pkg/response"
)

type EvidenceHandler struct {
	evidenceService service.EvidenceService
}

func NewEvidenceHandler(evidenceService service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService}
}

func (h *EvidenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	evidences := router.Group("/material-evidences")
	{
		evidences.GET("", h.ListEvidence)
		evidences.GET("/:id", h.GetEvidenceByID)
		evidences.POST("", h.CreateEvidence)
		evidences.PUT("/:id", h.UpdateEvidence)
		evidences.PATCH("/:id", h.UpdateEvidence)
		evidences.DELETE("/:id", h.DeleteEvidence)
	}

	groups := router.Group("/evidence-groups")
	{
		groups.GET("", h.ListGroups)
		groups.GET("/:id", h.GetGroupByID)
		groups.POST("", h.CreateGroup)
		groups.PUT("/:id", h.UpdateGroup)
		groups.PATCH("/:id", h.UpdateGroup)
		groups.DELETE("/:id", h.DeleteGroup)
	}

	// custody events are append-only; mutation is denied, not unrouted
	events := router.Group("/material-evidence-events")
	{
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEventByID)
		events.POST("", h.CreateEvent)
		events.PUT("/:id", h.RejectEventMutation)
		events.PATCH("/:id", h.RejectEventMutation)
		events.DELETE("/:id", h.RejectEventMutation)
	}
}

// RejectEventMutation answers any attempt to change or remove a custody event
func (h *EvidenceHandler) RejectEventMutation(c *gin.Context) {
	c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Custody events are append-only"))
}

// ListEvidence returns evidence items visible within the caller's scope
// @Summary      List material evidence
// @Tags         material-evidences
// @Security     BearerAuth
// @Produce      json
// @Param        case   query     string  false  "Filter by case ID"
// @Param        page   query     int     false  "Page number (default: 1)"
// @Param        limit  query     int     false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.EvidenceResponse}
// @Router       /material-evidences [get]
func (h *EvidenceHandler) ListEvidence(c *gin.Context) {
	p := pagination.Parse(c)

	caseID, ok := parseCaseFilter(c)
	if !ok {
		return
	}

	items, total, err := h.evidenceService.ListEvidence(c.Request.Context(), middleware.Actor(c), caseID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, items, p.Page, p.Limit, total))
}

// GetEvidenceByID fetches one evidence item within the caller's scope
// @Summary      Get material evidence by ID
// @Tags         material-evidences
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Evidence ID"
// @Success      200  {object}  response.Response{data=service.EvidenceResponse}
// @Failure      404  {object}  response.Response
// @Router       /material-evidences/{id} [get]
func (h *EvidenceHandler) GetEvidenceByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	item, err := h.evidenceService.GetEvidence(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateEvidence registers a new evidence item on a case owned by the caller
// @Summary      Create material evidence
// @Tags         material-evidences
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateEvidenceRequest  true  "Evidence payload"
// @Success      201      {object}  response.Response{data=service.EvidenceResponse}
// @Failure      403      {object}  response.Response
// @Router       /material-evidences [post]
func (h *EvidenceHandler) CreateEvidence(c *gin.Context) {
	var req service.CreateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.evidenceService.CreateEvidence(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateEvidence modifies an evidence item within the caller's scope
// @Summary      Update material evidence
// @Tags         material-evidences
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Evidence ID"
// @Param        payload  body      service.UpdateEvidenceRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.EvidenceResponse}
// @Failure      404      {object}  response.Response
// @Router       /material-evidences/{id} [put]
func (h *EvidenceHandler) UpdateEvidence(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	item, err := h.evidenceService.UpdateEvidence(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteEvidence removes an evidence item within the caller's scope
// @Summary      Delete material evidence
// @Tags         material-evidences
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Evidence ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /material-evidences/{id} [delete]
func (h *EvidenceHandler) DeleteEvidence(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.evidenceService.DeleteEvidence(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Evidence deleted successfully"))
}

// ListGroups returns evidence groups visible within the caller's scope
// @Summary      List evidence groups
// @Tags         evidence-groups
// @Security     BearerAuth
// @Produce      json
// @Param        case   query     string  false  "Filter by case ID"
// @Param        page   query     int     false  "Page number (default: 1)"
// @Param        limit  query     int     false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.GroupResponse}
// @Router       /evidence-groups [get]
func (h *EvidenceHandler) ListGroups(c *gin.Context) {
	p := pagination.Parse(c)

	caseID, ok := parseCaseFilter(c)
	if !ok {
		return
	}

	groups, total, err := h.evidenceService.ListGroups(c.Request.Context(), middleware.Actor(c), caseID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, groups, p.Page, p.Limit, total))
}

// GetGroupByID fetches one evidence group within the caller's scope
// @Summary      Get evidence group by ID
// @Tags         evidence-groups
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  response.Response{data=service.GroupResponse}
// @Failure      404  {object}  response.Response
// @Router       /evidence-groups/{id} [get]
func (h *EvidenceHandler) GetGroupByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	group, err := h.evidenceService.GetGroup(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

// CreateGroup registers an evidence group on a case owned by the caller
// @Summary      Create evidence group
// @Tags         evidence-groups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateGroupRequest  true  "Group payload"
// @Success      201      {object}  response.Response{data=service.GroupResponse}
// @Failure      403      {object}  response.Response
// @Router       /evidence-groups [post]
func (h *EvidenceHandler) CreateGroup(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	group, err := h.evidenceService.CreateGroup(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, group))
}

// UpdateGroup renames an evidence group within the caller's scope
// @Summary      Update evidence group
// @Tags         evidence-groups
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Group ID"
// @Param        payload  body      service.UpdateGroupRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.GroupResponse}
// @Failure      404      {object}  response.Response
// @Router       /evidence-groups/{id} [put]
func (h *EvidenceHandler) UpdateGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	group, err := h.evidenceService.UpdateGroup(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

// DeleteGroup removes an evidence group within the caller's scope
// @Summary      Delete evidence group
// @Tags         evidence-groups
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /evidence-groups/{id} [delete]
func (h *EvidenceHandler) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.evidenceService.DeleteGroup(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Evidence group deleted successfully"))
}

// ListEvents returns custody events visible within the caller's scope
// @Summary      List custody events
// @Tags         material-evidence-events
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response{data=[]service.EventResponse}
// @Router       /material-evidence-events [get]
func (h *EvidenceHandler) ListEvents(c *gin.Context) {
	p := pagination.Parse(c)

	events, total, err := h.evidenceService.ListEvents(c.Request.Context(), middleware.Actor(c), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, events, p.Page, p.Limit, total))
}

// GetEventByID fetches one custody event within the caller's scope
// @Summary      Get custody event by ID
// @Tags         material-evidence-events
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.Response{data=service.EventResponse}
// @Failure      404  {object}  response.Response
// @Router       /material-evidence-events/{id} [get]
func (h *EvidenceHandler) GetEventByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	event, err := h.evidenceService.GetEvent(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

// CreateEvent appends a custody event to an evidence item
// @Summary      Create custody event
// @Tags         material-evidence-events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateEventRequest  true  "Event payload"
// @Success      201      {object}  response.Response{data=service.EventResponse}
// @Failure      400      {object}  response.Response
// @Router       /material-evidence-events [post]
func (h *EvidenceHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.evidenceService.CreateEvent(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, event))
}
