package courts

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/validation"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Courts interface {
	Geocode(ctx context.Context, zip string) (*GeocodeResponse, error)
	Nearby(ctx context.Context, query NearbyQuery) ([]Court, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Courts
	Router  Router
}

func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/geocode", h.geocodeHandler)
	r.GET("/nearby", h.nearbyHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) geocodeHandler(c *gin.Context) {
	var query GeocodeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	location, err := h.Service.Geocode(c.Request.Context(), query.Zip)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

func (h *httpHandler) nearbyHandler(c *gin.Context) {
	var query NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	courts, err := h.Service.Nearby(c.Request.Context(), query)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, courts)
}
