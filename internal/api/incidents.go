package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
	"github.com/mkraiem/go-smartcity-alerts/internal/repository"
)

const defaultIncidentPriority = 3

type IncidentHandler struct {
	repo repository.IncidentRepository
}

func NewIncidentHandler(repo repository.IncidentRepository) *IncidentHandler {
	return &IncidentHandler{repo: repo}
}

func (h *IncidentHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/incidents", h.list)
	r.POST("/api/incidents", h.create)
	r.GET("/api/incidents/high-priority", h.highPriority)
	r.GET("/api/incidents/status/:status", h.byStatus)
	r.GET("/api/incidents/:id", h.get)
	r.PUT("/api/incidents/:id", h.update)
	r.DELETE("/api/incidents/:id", h.remove)
	r.PUT("/api/incidents/:id/status", h.updateStatus)
	r.PUT("/api/incidents/:id/assign", h.assign)
	r.GET("/health", h.health)
}

type incidentRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	ReportedBy  string `json:"reportedBy" binding:"required"`
	Status      string `json:"status"`
	Priority    *int   `json:"priority" binding:"omitempty,min=1,max=5"`
	AssignedTo  string `json:"assignedTo"`
}

type incidentResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ReportedBy  string `json:"reportedBy"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
	ReportedAt  string `json:"reportedAt"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

func toIncidentResponse(i models.Incident) incidentResponse {
	return incidentResponse{
		ID:          i.ID,
		Type:        i.Type,
		Description: i.Description,
		Location:    i.Location,
		ReportedBy:  i.ReportedBy,
		Status:      string(i.Status),
		Priority:    i.Priority,
		ReportedAt:  i.ReportedAt.Format(models.TimestampLayout),
		AssignedTo:  i.AssignedTo,
	}
}

func toIncidentList(incidents []models.Incident) []incidentResponse {
	out := make([]incidentResponse, 0, len(incidents))
	for _, i := range incidents {
		out = append(out, toIncidentResponse(i))
	}
	return out
}

func (h *IncidentHandler) create(c *gin.Context) {
	var req incidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.StatusReported
	if req.Status != "" {
		parsed, err := models.ParseIncidentStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}

	priority := defaultIncidentPriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	incident := models.Incident{
		Type:        req.Type,
		Description: req.Description,
		Location:    req.Location,
		ReportedBy:  req.ReportedBy,
		Status:      status,
		Priority:    priority,
		ReportedAt:  time.Now(),
		AssignedTo:  req.AssignedTo,
	}

	if err := h.repo.Create(c.Request.Context(), &incident); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create incident"})
		return
	}
	c.JSON(http.StatusCreated, toIncidentResponse(incident))
}

func (h *IncidentHandler) list(c *gin.Context) {
	incidents, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch incidents"})
		return
	}
	c.JSON(http.StatusOK, toIncidentList(incidents))
}

func (h *IncidentHandler) get(c *gin.Context) {
	incident, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toIncidentResponse(*incident))
}

func (h *IncidentHandler) update(c *gin.Context) {
	incident, ok := h.fetch(c)
	if !ok {
		return
	}

	var req incidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != "" {
		status, err := models.ParseIncidentStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		incident.Status = status
	}
	if req.Priority != nil {
		incident.Priority = *req.Priority
	}
	incident.Type = req.Type
	incident.Description = req.Description
	incident.Location = req.Location
	incident.ReportedBy = req.ReportedBy
	incident.AssignedTo = req.AssignedTo

	if _, err := h.repo.Update(c.Request.Context(), incident); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update incident"})
		return
	}
	c.JSON(http.StatusOK, toIncidentResponse(*incident))
}

func (h *IncidentHandler) remove(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}

	removed, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete incident"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IncidentHandler) byStatus(c *gin.Context) {
	status, err := models.ParseIncidentStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incidents, err := h.repo.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch incidents"})
		return
	}
	c.JSON(http.StatusOK, toIncidentList(incidents))
}

func (h *IncidentHandler) highPriority(c *gin.Context) {
	incidents, err := h.repo.ListHighPriority(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch incidents"})
		return
	}
	c.JSON(http.StatusOK, toIncidentList(incidents))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *IncidentHandler) updateStatus(c *gin.Context) {
	incident, ok := h.fetch(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseIncidentStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	incident.Status = status

	if _, err := h.repo.Update(c.Request.Context(), incident); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update incident"})
		return
	}
	c.JSON(http.StatusOK, toIncidentResponse(*incident))
}

type assignRequest struct {
	AssignedTo string `json:"assignedTo" binding:"required"`
}

func (h *IncidentHandler) assign(c *gin.Context) {
	incident, ok := h.fetch(c)
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident.AssignedTo = req.AssignedTo
	if incident.Status == models.StatusReported {
		incident.Status = models.StatusAcknowledged
	}

	if _, err := h.repo.Update(c.Request.Context(), incident); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign incident"})
		return
	}
	c.JSON(http.StatusOK, toIncidentResponse(*incident))
}

func (h *IncidentHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fetch resolves the :id param to an incident, writing the error response
// itself when the id is malformed or unknown.
func (h *IncidentHandler) fetch(c *gin.Context) (*models.Incident, bool) {
	id, ok := parseIncidentID(c)
	if !ok {
		return nil, false
	}

	incident, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch incident"})
		return nil, false
	}
	if incident == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return nil, false
	}
	return incident, true
}

func parseIncidentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident id"})
		return 0, false
	}
	return id, true
}
