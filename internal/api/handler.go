package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"pickpack-service/internal/picking"
	"pickpack-service/internal/service"
	"pickpack-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	sessions *service.SessionService
	catalog  *service.CatalogClient
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *service.SessionService, catalog *service.CatalogClient) *Handler {
	return &Handler{
		sessions: sessions,
		catalog:  catalog,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.startSession)
		v1.GET("/sessions/:picker", h.getSession)
		v1.GET("/sessions/:picker/items", h.pendingItems)
		v1.POST("/sessions/:picker/items/:productId/done", h.reportDone)
		v1.POST("/sessions/:picker/items/:productId/shortage", h.reportShortage)
		v1.GET("/sessions/:picker/packing", h.packingView)
		v1.POST("/sessions/:picker/finish", h.finishSession)
		v1.DELETE("/sessions/:picker", h.abandonSession)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// startSession handles starting a pick session for a batch
func (h *Handler) startSession(c *gin.Context) {
	var req service.StartSessionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := h.sessions.StartSession(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Picker already has an active session",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to start session",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, view)
}

// getSession handles fetching the current session snapshot
func (h *Handler) getSession(c *gin.Context) {
	view, err := h.sessions.GetSession(c.Param("picker"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No active session for picker",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// pendingItems returns the picker's work queue decorated with product
// display metadata from the catalog.
func (h *Handler) pendingItems(c *gin.Context) {
	items, err := h.sessions.PendingItems(c.Param("picker"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No active session for picker",
		})
		return
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := h.catalog.GetProducts(c.Request.Context(), ids)
	if err != nil {
		// display metadata is optional; picking continues without it
		products = nil
	}

	type itemView struct {
		ProductID int64       `json:"product_id"`
		TotalQty  string      `json:"total_qty"`
		Unit      string      `json:"unit"`
		Status    string      `json:"status"`
		Product   interface{} `json:"product,omitempty"`
	}

	views := make([]itemView, len(items))
	for i, item := range items {
		views[i] = itemView{
			ProductID: item.ProductID,
			TotalQty:  item.TotalQty.String(),
			Unit:      item.Unit,
			Status:    string(item.Status),
		}
		if p, ok := products[item.ProductID]; ok {
			views[i].Product = p
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": views})
}

// reportDone handles marking a pick item as fully found
func (h *Handler) reportDone(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	err := h.sessions.ReportDone(c.Request.Context(), c.Param("picker"), productID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "done"})
}

type shortageRequest struct {
	ActualQty *decimal.Decimal `json:"actual_qty" binding:"required"`
}

// reportShortage handles a picker reporting the actually-available quantity
func (h *Handler) reportShortage(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	var req shortageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body: actual_qty must be a number",
			"details": err.Error(),
		})
		return
	}

	err := h.sessions.ReportShortage(c.Request.Context(), c.Param("picker"), productID, *req.ActualQty)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "shortage"})
}

// packingView handles the packing manifest request; the manifest is
// recomputed from current session state on every call.
func (h *Handler) packingView(c *gin.Context) {
	manifest, err := h.sessions.PackingView(c.Request.Context(), c.Param("picker"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, manifest)
}

// finishSession handles ending a run and returns the final manifest
func (h *Handler) finishSession(c *gin.Context) {
	manifest, err := h.sessions.FinishSession(c.Request.Context(), c.Param("picker"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, manifest)
}

// abandonSession handles dropping a run without producing a manifest
func (h *Handler) abandonSession(c *gin.Context) {
	if err := h.sessions.AbandonSession(c.Request.Context(), c.Param("picker")); err != nil {
		h.sessionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return id, true
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session for picker"})
	case errors.Is(err, picking.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not in current batch"})
	case errors.Is(err, picking.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Shortage quantity must be non-negative"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Request failed",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
