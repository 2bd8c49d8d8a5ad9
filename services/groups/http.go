package groups

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/store"
)

const maxImageSize = 10 << 20

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Groups interface {
	Create(ctx context.Context, uid string, request CreateGroupRequest) (*store.Group, error)
	Mine(ctx context.Context, uid string) ([]*store.Group, error)
	Detail(ctx context.Context, uid, groupID string) (*GroupDetail, error)
	RequestJoin(ctx context.Context, uid, groupID string) (*store.GroupRequest, error)
	ListPending(ctx context.Context, uid, groupID string) ([]*store.GroupRequest, error)
	MyRequests(ctx context.Context, uid string) ([]*store.GroupRequest, error)
	Respond(ctx context.Context, uid, requestID, action string) (*store.GroupRequest, error)
	UploadImage(ctx context.Context, uid, groupID, filename, contentType string, r io.Reader) (string, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Groups
	Router  Router
}

func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("", h.createHandler)
	r.GET("/mine", h.mineHandler)
	r.GET("/requests/mine", h.myRequestsHandler)
	r.POST("/requests/:request_id/respond", h.respondHandler)
	r.GET("/:group_id", h.detailHandler)
	r.POST("/:group_id/join", h.joinHandler)
	r.GET("/:group_id/requests", h.pendingHandler)
	r.POST("/:group_id/image", h.imageHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CreateGroupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	group, err := h.Service.Create(c.Request.Context(), auth.UserID(c), request)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *httpHandler) mineHandler(c *gin.Context) {
	groups, err := h.Service.Mine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *httpHandler) myRequestsHandler(c *gin.Context) {
	requests, err := h.Service.MyRequests(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *httpHandler) detailHandler(c *gin.Context) {
	detail, err := h.Service.Detail(c.Request.Context(), auth.UserID(c), c.Param("group_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *httpHandler) joinHandler(c *gin.Context) {
	request, err := h.Service.RequestJoin(c.Request.Context(), auth.UserID(c), c.Param("group_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *httpHandler) pendingHandler(c *gin.Context) {
	requests, err := h.Service.ListPending(c.Request.Context(), auth.UserID(c), c.Param("group_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
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

func (h *httpHandler) imageHandler(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		apperrors.Respond(c, apperrors.Invalid("image", "multipart file 'image' is required"))
		return
	}
	if header.Size > maxImageSize {
		apperrors.Respond(c, apperrors.Invalid("image", "image must be 10 MB or smaller"))
		return
	}

	file, err := header.Open()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	defer file.Close()

	imageURL, err := h.Service.UploadImage(c.Request.Context(), auth.UserID(c), c.Param("group_id"),
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ImageResponse{ImageURL: imageURL})
}
