package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/models"
)

const (
	sendQueueSize = 256
	writeWait     = 10 * time.Second
)

// Connection is one live websocket with the identity that was resolved
// at admission. The identity is attached for the whole lifetime of the
// connection; it is never re-checked per event.
type Connection struct {
	id   string
	user *models.User
	ws   *websocket.Conn
	send chan []byte
	hub  *Hub
}

func NewConnection(hub *Hub, ws *websocket.Conn, user *models.User) *Connection {
	return &Connection{
		id:   uuid.NewString(),
		user: user,
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
		hub:  hub,
	}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) UserID() string {
	if c.user == nil {
		return ""
	}
	return c.user.ID.Hex()
}

// Serve registers the connection and pumps it until the peer goes away.
// It blocks for the lifetime of the connection.
func (c *Connection) Serve() {
	c.hub.register(c)
	go c.writePump()
	c.readPump()
}

func (c *Connection) Close() {
	_ = c.ws.Close()
}

// enqueue hands a frame to the write pump without blocking; a full
// queue means the peer stopped reading and the frame is dropped.
func (c *Connection) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		logger.Warn().Str("user", c.UserID()).Str("conn", c.id).Msg("send queue full, dropping frame")
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.ws.Close()
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Str("user", c.UserID()).Msg("read error")
			}
			break
		}
		c.hub.processFrame(c, raw)
	}
}

func (c *Connection) writePump() {
	defer func() {
		_ = c.ws.Close()
	}()

	for frame := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			logger.Debug().Err(err).Str("user", c.UserID()).Msg("write error")
			return
		}
	}
	// Hub closed the send queue; tell the peer we are done.
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// reply sends a frame to this connection only, bypassing the registry.
func (c *Connection) reply(event Event, data interface{}) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		logger.Error().Err(err).Str("event", string(event)).Msg("encoding frame failed")
		return
	}
	c.enqueue(frame)
}
