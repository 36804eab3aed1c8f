package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	aggregator *Aggregator
	service    *Service
	hub        *Hub
}

func NewHandler(aggregator *Aggregator, service *Service, hub *Hub) *Handler {
	return &Handler{aggregator: aggregator, service: service, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	dash := rg.Group("/dashboard")
	{
		dash.GET("/engagements", h.ListEngagements)
		dash.GET("/engagements/export", h.Export)
		dash.GET("/clients/:clientId/progress", h.ClientProgress)
		dash.GET("/ws", h.Live)
	}

	deliverables := rg.Group("/deliverables")
	{
		deliverables.GET("", h.ListDeliverables)
		deliverables.POST("", h.CreateDeliverable)
		deliverables.PUT("/:id/status", h.UpdateDeliverableStatus)
		deliverables.DELETE("/:id", h.DeleteDeliverable)
	}

	risks := rg.Group("/risks")
	{
		risks.GET("", h.ListRisks)
		risks.POST("", h.CreateRisk)
		risks.PATCH("/:id", h.UpdateRisk)
		risks.DELETE("/:id", h.DeleteRisk)
	}
}

func (h *Handler) ListEngagements(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			page = p
		}
	}

	items, err := h.aggregator.LoadProgress(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Paginate(items, page))
}

func (h *Handler) Export(c *gin.Context) {
	items, err := h.aggregator.LoadProgress(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := ExportEngagements(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="engagements.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) ClientProgress(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	progress, err := h.aggregator.ProgressForClient(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if progress == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no engagement for client"})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) Live(c *gin.Context) {
	h.hub.HandleConnection(c.Writer, c.Request)
}

func (h *Handler) ListDeliverables(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}

	list, err := h.service.ListDeliverables(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateDeliverable(c *gin.Context) {
	var req struct {
		ClientID uuid.UUID  `json:"client_id" binding:"required"`
		Title    string     `json:"title" binding:"required"`
		DueAt    *time.Time `json:"due_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.CreateDeliverable(c.Request.Context(), req.ClientID, req.Title, req.DueAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDeliverableStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Status DeliverableStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.UpdateDeliverableStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDeliverable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteDeliverable(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListRisks(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}

	list, err := h.service.ListRisks(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateRisk(c *gin.Context) {
	var req struct {
		ClientID uuid.UUID    `json:"client_id" binding:"required"`
		Title    string       `json:"title" binding:"required"`
		Severity RiskSeverity `json:"severity" binding:"required"`
		Notes    string       `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	risk, err := h.service.CreateRisk(c.Request.Context(), req.ClientID, req.Title, req.Severity, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, risk)
}

func (h *Handler) UpdateRisk(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Status   *RiskStatus   `json:"status"`
		Severity *RiskSeverity `json:"severity"`
		Notes    *string       `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	risk, err := h.service.UpdateRisk(c.Request.Context(), id, req.Status, req.Severity, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, risk)
}

func (h *Handler) DeleteRisk(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteRisk(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
