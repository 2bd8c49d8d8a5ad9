package discovery

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
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Discovery interface {
	Feed(ctx context.Context, uid string, request FeedRequest) (*FeedResponse, error)
	Preferences(ctx context.Context, uid string) (*store.Preferences, error)
	UpdatePreferences(ctx context.Context, uid string, patch PreferencesPatch) (*store.Preferences, error)
	Connect(ctx context.Context, uid string, request ConnectRequest) ([]ConnectResult, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Discovery
	Router  Router
}

func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/feed", h.feedHandler)
	r.GET("/preferences", h.preferencesHandler)
	r.PUT("/preferences", h.updatePreferencesHandler)
	r.POST("/connect", h.connectHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) feedHandler(c *gin.Context) {
	var request FeedRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	feed, err := h.Service.Feed(c.Request.Context(), auth.UserID(c), request)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *httpHandler) preferencesHandler(c *gin.Context) {
	prefs, err := h.Service.Preferences(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *httpHandler) updatePreferencesHandler(c *gin.Context) {
	var patch PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	prefs, err := h.Service.UpdatePreferences(c.Request.Context(), auth.UserID(c), patch)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *httpHandler) connectHandler(c *gin.Context) {
	var request ConnectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	results, err := h.Service.Connect(c.Request.Context(), auth.UserID(c), request)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
