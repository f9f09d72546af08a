/*
This file defines the Client struct, representing an active WebSocket connection. It
manages the connection's lifecycle and the two concurrent loops: ReadPump, which
consumes inbound frames and answers heartbeats, and WritePump, which drains the
occupant's outbound queue onto the wire.
*/
package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/1o0n1/structure/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 4096
)

// Client represents one active WebSocket connection bound to an Occupant record in
// the Registry. Either pump terminating tears the other down: the read pump's
// cleanup removes the occupant from the registry, which closes the outbound queue
// and so ends the write pump; a failed write closes the socket, which ends the read
// pump.
type Client struct {
	registry *Registry

	conn *websocket.Conn

	occupant *Occupant

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(registry *Registry, wsConn *websocket.Conn, occupant *Occupant) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", occupant.UserID.String()).
		Str("username", occupant.Username).
		Logger()

	return &Client{
		registry: registry,
		conn:     wsConn,
		occupant: occupant,
		logger:   clientLogger,
	}
}

// ReadPump consumes frames from the WebSocket connection until the peer closes or a
// read fails, then removes the occupant from the registry.
//
// A text frame equal to the heartbeat probe is answered with the heartbeat reply on
// the connection's own queue and never touches the registry. Any other frame is
// logged and ignored; malformed input does not terminate the connection.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		if msgType != websocket.TextMessage {
			continue
		}

		if string(messageBytes) == HeartbeatProbe {
			if !c.occupant.TrySend([]byte(HeartbeatReply)) {
				c.logger.Warn().Msg("Heartbeat reply dropped, outbound queue full or closed")
			}
			continue
		}

		c.logger.Debug().
			Bytes("message_bytes", messageBytes).
			Msg("Ignoring unhandled text frame")
	}
}

// cleanupOnDisconnect removes the occupant from the registry (broadcasting the
// user_left event) and closes the underlying connection.
func (c *Client) cleanupOnDisconnect() {
	c.registry.Leave(c.occupant)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}

	c.logger.Info().Msg("Client disconnected.")
}

// WritePump forwards frames from the occupant's outbound queue to the WebSocket
// connection and keeps the connection alive with periodic pings. It terminates when
// the queue is closed (occupant removed from the registry) or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit so ReadPump unblocks
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.occupant.Outbound():
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Info().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Info().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
