package notifications

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
	"github.com/playmatch/api/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Notifications interface {
	List(ctx context.Context, uid string) ([]*store.Notification, error)
	MarkRead(ctx context.Context, uid, id string) (*store.Notification, error)
	PendingCount(ctx context.Context, uid string) (int, error)
	SubscribePendingCount(ctx context.Context, uid string) *store.Subscription[int]
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Notifications
	Router  Router
}

func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("", h.listHandler)
	r.POST("/:notification_id/read", h.readHandler)
	r.GET("/pending", h.pendingHandler)
	r.GET("/pending/stream", h.pendingStreamHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) listHandler(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if list == nil {
		list = []*store.Notification{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) readHandler(c *gin.Context) {
	n, err := h.Service.MarkRead(c.Request.Context(), auth.UserID(c), c.Param("notification_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *httpHandler) pendingHandler(c *gin.Context) {
	count, err := h.Service.PendingCount(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, PendingCountResponse{Count: count})
}

// pendingStreamHandler pushes the badge count as server-sent events until the
// client goes away.
func (h *httpHandler) pendingStreamHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sub := h.Service.SubscribePendingCount(ctx, auth.UserID(c))
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case count, ok := <-sub.Updates():
			if !ok {
				return false
			}
			c.SSEvent("pending", PendingCountResponse{Count: count})
			return true
		}
	})
}
