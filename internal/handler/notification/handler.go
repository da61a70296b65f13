package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodles/order-api/internal/service/notification"
)

type Handler struct {
	store *notification.SnapshotStore
}

func NewHandler(store *notification.SnapshotStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/email-status/:orderId", h.EmailStatus)
}

// EmailStatus serves the notification outcome for an order. Unknown and
// expired orders read as the zero outcome, since clients poll before the
// fan-out completes.
func (h *Handler) EmailStatus(c *gin.Context) {
	outcome := h.store.Read(c.Param("orderId"))
	c.JSON(http.StatusOK, outcome)
}
