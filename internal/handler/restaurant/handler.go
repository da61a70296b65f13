package restaurant

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/foodles/order-api/internal/handler"
	"github.com/foodles/order-api/internal/service/restaurant"
)

type Handler struct {
	service *restaurant.Service
	monitor *restaurant.Monitor
	hub     *restaurant.Hub
	tracked []string
	logger  *zerolog.Logger
}

func NewHandler(service *restaurant.Service, monitor *restaurant.Monitor, hub *restaurant.Hub, tracked []string, logger *zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		monitor: monitor,
		hub:     hub,
		tracked: tracked,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	restaurants := r.Group("/restaurants")
	{
		restaurants.GET("/status", h.BatchStatus)
		restaurants.GET("/status/stream", h.Stream)
		restaurants.GET("/status/:id", h.Status)
	}
	r.POST("/log-restaurant-selection", h.LogSelection)
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetStatus(c.Param("id")))
}

// BatchStatus serves the cache-backed batch. Without an ids parameter it
// covers every tracked restaurant.
func (h *Handler) BatchStatus(c *gin.Context) {
	ids := h.tracked
	if raw := c.Query("ids"); raw != "" {
		ids = nil
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("no restaurant ids requested"))
		return
	}

	c.JSON(http.StatusOK, h.service.GetAllStatuses(ids))
}

// Stream pushes status changes over server-sent events. The subscriber
// receives one full snapshot frame first, then change batches as they occur.
func (h *Handler) Stream(c *gin.Context) {
	sub := h.hub.Subscribe(restaurant.Message{
		Type:     restaurant.MessageSnapshot,
		Statuses: h.monitor.Snapshot(),
	})
	defer h.hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	h.logger.Info().Str("client_ip", c.ClientIP()).Msg("status subscriber connected")
	defer h.logger.Info().Str("client_ip", c.ClientIP()).Msg("status subscriber disconnected")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type logSelectionRequest struct {
	RestaurantID   string `json:"restaurantId"`
	RestaurantName string `json:"restaurantName"`
	Timestamp      string `json:"timestamp"`
}

// LogSelection records a storefront restaurant pick. Purely informational.
func (h *Handler) LogSelection(c *gin.Context) {
	var req logSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	h.logger.Info().
		Str("restaurant_id", req.RestaurantID).
		Str("restaurant_name", req.RestaurantName).
		Str("timestamp", req.Timestamp).
		Msg("restaurant selected")

	c.JSON(http.StatusOK, gin.H{"success": true})
}
