package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBuffer   = 16
	broadcastQueue = 64
)

// OrderEvent is the frame pushed to staff screens for every committed order
type OrderEvent struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

type client struct {
	conn   *websocket.Conn
	send   chan OrderEvent
	userID uint
}

// Hub fans committed orders out to connected admin websockets.
// A client whose buffer is full is disconnected rather than slowing the others.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan OrderEvent
	register   chan *client
	unregister chan *client
	done       chan struct{}
	upgrader   websocket.Upgrader

	mu    sync.RWMutex
	count int
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan OrderEvent, broadcastQueue),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Admin authentication already ran in the middleware chain
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			close(h.done)
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
		case c := <-h.unregister:
			h.drop(c)
		case event := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- event:
				default:
					log.WithField("user_id", c.userID).Warn("Dropping slow order feed client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Clients returns the number of connected feed clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// PublishOrder queues an order for broadcast. It never blocks the caller.
func (h *Hub) PublishOrder(order *models.Order) {
	select {
	case h.broadcast <- OrderEvent{Type: "order.created", Order: order}:
	default:
		log.WithField("order_id", order.ID).Warn("Order feed queue full, event dropped")
	}
}

// ServeWS godoc
// @Summary      Live order feed
// @Description  Upgrades to a websocket that receives every committed order as JSON
// @Tags         admin
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  models.APIError
// @Failure      403  {object}  models.APIError
// @Router       /api/v1/protected/admin/orders/feed [get]
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	cl := &client{conn: conn, send: make(chan OrderEvent, clientBuffer), userID: c.GetUint("userID")}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(cl)
	go h.readPump(cl)
}

// readPump only watches for close frames and pongs; clients never send data
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				log.WithError(err).WithField("user_id", c.userID).Debug("Order feed write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
