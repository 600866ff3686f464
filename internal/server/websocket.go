package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message or ping to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 64

	// How often an idle connection is pinged. A peer that misses a pong
	// within writeWait is dropped.
	pingPeriod = 54 * time.Second
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if !s.isAllowedOrigin(origin) {
		s.logger.Warn(r.Context(), nil, "WebSocket origin rejected", "origin", origin)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The origin was checked against the configured list above, which may
		// name hosts other than the one serving the request.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Error(r.Context(), err, "WebSocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
		ctx:    ctx,
		cancel: cancel,
	}

	select {
	case s.register <- client:
	case <-r.Context().Done():
		cancel()
		conn.Close(websocket.StatusGoingAway, "")
		return
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) runWebSocketHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-s.register:
			if client == nil || client.conn == nil {
				continue
			}
			s.clientsMutex.Lock()
			s.clients[client.conn] = client
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Debug(ctx, "WebSocket client connected", "client", client.id, "clients", count)

		case conn := <-s.unregister:
			s.removeClient(conn)

		case message := <-s.broadcast:
			s.clientsMutex.RLock()
			var failed []*websocket.Conn
			for conn, client := range s.clients {
				select {
				case client.send <- message:
				default:
					failed = append(failed, conn)
				}
			}
			s.clientsMutex.RUnlock()

			// Slow clients are dropped rather than blocking the hub.
			for _, conn := range failed {
				s.removeClient(conn)
			}
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}

	s.clientsMutex.Lock()
	client, ok := s.clients[conn]
	if ok {
		delete(s.clients, conn)
		close(client.send)
	}
	count := len(s.clients)
	s.clientsMutex.Unlock()

	if ok {
		// Cancelling a read aborts the close handshake, so the context
		// ends after Close.
		go func() {
			conn.Close(websocket.StatusNormalClosure, "")
			client.cancel()
		}()
		s.logger.Debug(context.Background(), "WebSocket client disconnected", "client", client.id, "clients", count)
	}
}

// readPump drains the connection so close frames and pongs are processed.
// Client messages carry no meaning and are discarded. Reads last as long as
// the client does; liveness is checked by the pings in writePump.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.server.unregister <- c.conn:
		case <-time.After(writeWait):
			// Hub has stopped; Shutdown already closed the connection.
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, _, err := c.conn.Read(c.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && c.ctx.Err() == nil {
				c.server.logger.Debug(context.Background(), "WebSocket read ended", "error", err.Error())
			}
			return
		}
	}
}

// writePump delivers queued messages and keeps the connection alive. A
// closed send channel means the hub or Shutdown owns closing the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.server.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.server.logger.Debug(context.Background(), "WebSocket write failed", "error", err.Error())
				c.conn.CloseNow()
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.conn.CloseNow()
				return
			}
		}
	}
}
