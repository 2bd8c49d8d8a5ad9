package account

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

const maxPhotoSize = 5 << 20

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PATCH(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

// Accounts is the interface of the account service.
type Accounts interface {
	SignUp(ctx context.Context, request SignUpRequest) (*SignUpResponse, error)
	SignOut(ctx context.Context, uid string) error
	Me(ctx context.Context, identity auth.Identity) (*MeResponse, error)
	Onboard(ctx context.Context, identity auth.Identity, request OnboardingRequest) (*store.Profile, error)
	UpdateProfile(ctx context.Context, uid string, patch ProfilePatch) (*store.Profile, error)
	UploadPhoto(ctx context.Context, identity auth.Identity, contentType string, r io.Reader) (string, error)
	SetPushToken(ctx context.Context, identity auth.Identity, token string) error
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Accounts

	// PublicRouter serves unauthenticated routes (sign-up).
	PublicRouter Router

	// Router serves routes that run behind the auth middleware.
	Router Router
}

func NewHTTPHandler(opts HTTPOptions) {
	h := &httpHandler{opts}

	opts.PublicRouter.POST("/signup", h.signUpHandler)

	r := opts.Router
	r.GET("/me", h.meHandler)
	r.POST("/onboarding", h.onboardingHandler)
	r.PATCH("/profile", h.profileHandler)
	r.POST("/photo", h.photoHandler)
	r.PUT("/push-token", h.pushTokenHandler)
	r.POST("/signout", h.signOutHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) signUpHandler(c *gin.Context) {
	var request SignUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	response, err := h.Service.SignUp(c.Request.Context(), request)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *httpHandler) meHandler(c *gin.Context) {
	response, err := h.Service.Me(c.Request.Context(), auth.CurrentIdentity(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) onboardingHandler(c *gin.Context) {
	var request OnboardingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	profile, err := h.Service.Onboard(c.Request.Context(), auth.CurrentIdentity(c), request)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *httpHandler) profileHandler(c *gin.Context) {
	var patch ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	profile, err := h.Service.UpdateProfile(c.Request.Context(), auth.UserID(c), patch)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *httpHandler) photoHandler(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		apperrors.Respond(c, apperrors.Invalid("photo", "multipart file 'photo' is required"))
		return
	}
	if header.Size > maxPhotoSize {
		apperrors.Respond(c, apperrors.Invalid("photo", "photo must be 5 MB or smaller"))
		return
	}

	file, err := header.Open()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	defer file.Close()

	photoURL, err := h.Service.UploadPhoto(c.Request.Context(), auth.CurrentIdentity(c), header.Header.Get("Content-Type"), file)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, PhotoResponse{PhotoURL: photoURL})
}

func (h *httpHandler) pushTokenHandler(c *gin.Context) {
	var request PushTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	if err := h.Service.SetPushToken(c.Request.Context(), auth.CurrentIdentity(c), request.Token); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) signOutHandler(c *gin.Context) {
	if err := h.Service.SignOut(c.Request.Context(), auth.UserID(c)); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
