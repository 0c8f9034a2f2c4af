package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/mkraiem/go-smartcity-alerts/internal/alertstore"
	"github.com/mkraiem/go-smartcity-alerts/internal/broadcast"
	"github.com/mkraiem/go-smartcity-alerts/internal/models"
	"github.com/mkraiem/go-smartcity-alerts/internal/worker"
)

// AlertStore is the mutation and id-lookup surface of the alert store.
type AlertStore interface {
	Save(a models.Alert) (models.Alert, error)
	FindByID(id string) (models.Alert, bool)
	FindAll() []models.Alert
	Delete(id string) (bool, error)
}

// AlertQueries is the predicate-query surface evaluated against the
// persisted document.
type AlertQueries interface {
	FilterBySeverity(severity models.Severity) ([]models.Alert, error)
	FilterByRegion(region string) ([]models.Alert, error)
	FilterBySeveritySet(severities ...models.Severity) ([]models.Alert, error)
	CriticalAlerts() ([]models.Alert, error)
	CountBySeverity(severity models.Severity) (int, error)
	MostRecent() (models.Alert, bool, error)
	ValidateStructure() bool
}

type AlertHandler struct {
	store       AlertStore
	queries     AlertQueries
	broadcaster *broadcast.Broadcaster
	notifier    *worker.Pool
}

func NewAlertHandler(store AlertStore, queries AlertQueries, broadcaster *broadcast.Broadcaster, notifier *worker.Pool) *AlertHandler {
	return &AlertHandler{
		store:       store,
		queries:     queries,
		broadcaster: broadcaster,
		notifier:    notifier,
	}
}

func (h *AlertHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/alerts", h.list)
	r.POST("/api/alerts", h.broadcastAlert)
	r.GET("/api/alerts/critical", h.critical)
	r.GET("/api/alerts/high-priority", h.highPriority)
	r.GET("/api/alerts/most-recent", h.mostRecent)
	r.GET("/api/alerts/count", h.countBySeverity)
	r.GET("/api/alerts/severity/:level", h.bySeverity)
	r.GET("/api/alerts/region/:region", h.byRegion)
	r.GET("/api/alerts/stream", h.stream)
	r.GET("/api/alerts/:id", h.get)
	r.DELETE("/api/alerts/:id", h.remove)
	r.GET("/health", h.health)
}

type broadcastAlertRequest struct {
	ID        string `json:"id"`
	Severity  string `json:"severity" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Region    string `json:"region" binding:"required"`
	Timestamp string `json:"timestamp"`
	Issuer    string `json:"issuer"`
}

type alertResponse struct {
	ID        string `json:"id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Region    string `json:"region"`
	Timestamp string `json:"timestamp"`
	Issuer    string `json:"issuer,omitempty"`
}

func toAlertResponse(a models.Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		Severity:  a.Severity.String(),
		Message:   a.Message,
		Region:    a.Region,
		Timestamp: a.Timestamp,
		Issuer:    a.Issuer,
	}
}

func toAlertList(alerts []models.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return out
}

func (h *AlertHandler) broadcastAlert(c *gin.Context) {
	var req broadcastAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.store.Save(models.Alert{
		ID:        req.ID,
		Severity:  severity,
		Message:   req.Message,
		Region:    req.Region,
		Timestamp: req.Timestamp,
		Issuer:    req.Issuer,
	})
	if err != nil {
		var verr *alertstore.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist alert"})
		return
	}

	if h.notifier != nil {
		h.notifier.Submit(saved)
	}

	c.JSON(http.StatusCreated, toAlertResponse(saved))
}

func (h *AlertHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, toAlertList(h.store.FindAll()))
}

func (h *AlertHandler) get(c *gin.Context) {
	a, ok := h.store.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, toAlertResponse(a))
}

func (h *AlertHandler) remove(c *gin.Context) {
	removed, err := h.store.Delete(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist deletion"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AlertHandler) critical(c *gin.Context) {
	h.respondFiltered(c, h.queries.CriticalAlerts)
}

func (h *AlertHandler) highPriority(c *gin.Context) {
	h.respondFiltered(c, func() ([]models.Alert, error) {
		return h.queries.FilterBySeveritySet(models.SeveritySevere, models.SeverityCritical)
	})
}

func (h *AlertHandler) bySeverity(c *gin.Context) {
	severity, err := models.ParseSeverity(c.Param("level"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondFiltered(c, func() ([]models.Alert, error) {
		return h.queries.FilterBySeverity(severity)
	})
}

func (h *AlertHandler) byRegion(c *gin.Context) {
	region := c.Param("region")
	h.respondFiltered(c, func() ([]models.Alert, error) {
		return h.queries.FilterByRegion(region)
	})
}

func (h *AlertHandler) countBySeverity(c *gin.Context) {
	severity, err := models.ParseSeverity(c.Query("severity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.queries.CountBySeverity(severity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"severity": severity.String(), "count": count})
}

func (h *AlertHandler) mostRecent(c *gin.Context) {
	a, ok, err := h.queries.MostRecent()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query alerts"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no alerts"})
		return
	}
	c.JSON(http.StatusOK, toAlertResponse(a))
}

// stream pushes newly broadcast alerts to the client as server-sent events
// until the client disconnects or the service shuts down.
func (h *AlertHandler) stream(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live stream disabled"})
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case a, ok := <-ch:
			if !ok {
				return false
			}
			sse.Encode(w, sse.Event{
				Event: "alert",
				Data:  toAlertResponse(a),
			})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *AlertHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"document_valid": h.queries.ValidateStructure(),
	})
}

func (h *AlertHandler) respondFiltered(c *gin.Context, query func() ([]models.Alert, error)) {
	alerts, err := query()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query alerts"})
		return
	}
	c.JSON(http.StatusOK, toAlertList(alerts))
}
