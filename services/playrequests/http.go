package playrequests

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type PlayRequests interface {
	Create(ctx context.Context, senderID string, request CreatePlayRequest) (*PlayRequestView, error)
	ListReceived(ctx context.Context, uid string) ([]PlayRequestView, error)
	ListSent(ctx context.Context, uid string, status store.Status) ([]PlayRequestView, error)
	Respond(ctx context.Context, uid, requestID, action string) (*PlayRequestView, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service PlayRequests
	Router  Router
}

func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("", h.createHandler)
	r.GET("/received", h.receivedHandler)
	r.GET("/sent", h.sentHandler)
	r.POST("/:request_id/respond", h.respondHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CreatePlayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	created, err := h.Service.Create(c.Request.Context(), auth.UserID(c), request)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) receivedHandler(c *gin.Context) {
	list, err := h.Service.ListReceived(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) sentHandler(c *gin.Context) {
	status := store.Status(c.Query("status"))
	list, err := h.Service.ListSent(c.Request.Context(), auth.UserID(c), status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) respondHandler(c *gin.Context) {
	var request RespondRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	answered, err := h.Service.Respond(c.Request.Context(), auth.UserID(c), c.Param("request_id"), request.Action)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, answered)
}
