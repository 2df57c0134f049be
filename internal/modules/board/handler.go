package board

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tailtown/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Boards run on the local network; origin policy is the CORS
		// layer's job for the REST surface.
		return true
	},
}

type Handler struct {
	hub *Hub
	log *zerolog.Logger
}

func NewHandler(hub *Hub, log *zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/board/ws", h.Connect)
}

// Connect upgrades the request and streams lifecycle events for the
// tenant until the board disconnects.
func (h *Handler) Connect(c *gin.Context) {
	tenantID := c.GetInt64(middleware.TenantKey)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("board websocket upgrade failed")
		return
	}

	h.hub.Register(tenantID, conn)
	h.log.Debug().Int64("tenant_id", tenantID).Msg("board connected")

	// Boards only listen; the read loop just detects the close.
	go func() {
		defer h.hub.Unregister(tenantID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
