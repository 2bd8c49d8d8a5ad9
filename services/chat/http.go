package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/playmatch/api/pkg/apperrors"
	"github.com/playmatch/api/pkg/auth"
	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Chat interface {
	Send(ctx context.Context, uid, groupID, content string) (*store.Message, error)
	List(ctx context.Context, uid, groupID string) ([]*store.Message, error)
	Subscribe(ctx context.Context, uid, groupID string) (*store.Subscription[[]*store.Message], error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Service Chat
	Router  Router

	// CheckOrigin decides which browser origins may open the websocket.
	// Nil accepts every origin.
	CheckOrigin func(r *http.Request) bool
}

func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	h := &httpHandler{
		HTTPOptions: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
	r.POST("/:group_id/messages", h.sendHandler)
	r.GET("/:group_id/messages", h.listHandler)
	r.GET("/:group_id/messages/ws", h.streamHandler)
}

type httpHandler struct {
	HTTPOptions
	upgrader websocket.Upgrader
}

func (h *httpHandler) sendHandler(c *gin.Context) {
	var request SendRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		apperrors.Respond(c, validation.ParseError(err))
		return
	}

	m, err := h.Service.Send(c.Request.Context(), auth.UserID(c), c.Param("group_id"), request.Content)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *httpHandler) listHandler(c *gin.Context) {
	messages, err := h.Service.List(c.Request.Context(), auth.UserID(c), c.Param("group_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// streamHandler upgrades to a websocket that receives the full message list
// on every change. Text frames sent by the client are posted as messages.
// The subscription is closed as soon as the socket goes away.
func (h *httpHandler) streamHandler(c *gin.Context) {
	uid, groupID := auth.UserID(c), c.Param("group_id")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	sub, err := h.Service.Subscribe(ctx, uid, groupID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).WithField("group", groupID).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.WithFields(log.Fields{"group": groupID, "uid": uid})
	logger.Info("chat stream opened")

	go func() {
		defer cancel()
		h.readPump(ctx, conn, uid, groupID, logger)
	}()
	h.writePump(ctx, conn, sub, logger)
	logger.Info("chat stream closed")
}

func (h *httpHandler) readPump(ctx context.Context, conn *websocket.Conn, uid, groupID string, logger *log.Entry) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Warn("unexpected websocket close")
			}
			return
		}

		var request SendRequest
		if err := json.Unmarshal(data, &request); err != nil {
			logger.WithError(err).Debug("ignoring malformed chat frame")
			continue
		}
		if _, err := h.Service.Send(ctx, uid, groupID, request.Content); err != nil {
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				logger.WithError(err).Warn("could not post chat message from websocket")
			}
		}
	}
}

func (h *httpHandler) writePump(ctx context.Context, conn *websocket.Conn, sub *store.Subscription[[]*store.Message], logger *log.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case snapshot, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					logger.WithError(err).Error("chat listener stopped")
				}
				return
			}
			if snapshot == nil {
				snapshot = []*store.Message{}
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
