package connections

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Connections interface {
	List(ctx context.Context, uid string) ([]ConnectionView, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Connections
	Router  Router
}

func NewHTTPHandler(opts HTTPOptions) {
	h := &httpHandler{opts}
	opts.Router.GET("", h.listHandler)
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
	c.JSON(http.StatusOK, list)
}
