package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/hardware"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/service"
)

type handler struct {
	adminKey string
	orders   repository.OrderRepository
	pending  repository.PendingActionRepository
	syncer   *service.Syncer
	doors    hardware.DoorOpener
}

func newHandler(
	adminKey string,
	orders repository.OrderRepository,
	pending repository.PendingActionRepository,
	syncer *service.Syncer,
	doors hardware.DoorOpener,
) *handler {
	return &handler{
		adminKey: adminKey,
		orders:   orders,
		pending:  pending,
		syncer:   syncer,
		doors:    doors,
	}
}

func (h *handler) registerRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
	router.GET("/status", h.status)

	admin := router.Group("/", h.requireAdminKey)
	admin.GET("/actions", h.listActions)
	admin.POST("/doors/open", h.openDoors)
	admin.POST("/sync", h.triggerSync)
}

// requireAdminKey guards mutating and audit endpoints. With no key
// configured the endpoints are disabled outright.
func (h *handler) requireAdminKey(c *gin.Context) {
	if h.adminKey == "" || c.GetHeader("X-Admin-Key") != h.adminKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return
	}
	c.Next()
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StatusResponse summarizes the kiosk's replica and outbox state
type StatusResponse struct {
	Orders           int64      `json:"orders"`
	UnresolvedOutbox int64      `json:"unresolved_outbox"`
	LastSync         *time.Time `json:"last_sync,omitempty"`
}

func (h *handler) status(c *gin.Context) {
	orderCount, err := h.orders.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	outboxCount, err := h.pending.CountUnresolved(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := StatusResponse{
		Orders:           orderCount,
		UnresolvedOutbox: outboxCount,
	}
	if last := h.syncer.LastSync(); !last.IsZero() {
		resp.LastSync = &last
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) listActions(c *gin.Context) {
	actions, err := h.pending.List(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, actions)
}

// OpenDoorsRequest asks the kiosk to open specific doors
type OpenDoorsRequest struct {
	Doors []string `json:"doors" binding:"required,min=1"`
}

func (h *handler) openDoors(c *gin.Context) {
	var req OpenDoorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Info().Strs("doors", req.Doors).Msg("Admin door open requested")
	if err := h.doors.OpenDoors(req.Doors); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opened": req.Doors})
}

func (h *handler) triggerSync(c *gin.Context) {
	if err := h.syncer.SyncNow(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": true})
}
