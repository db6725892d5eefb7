package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"setlist/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 65536,
	// The overlay runs off file:// or a local dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one connected overlay. Writes are serialized by the mutex;
// reads happen only on the connection's own read loop.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Controller is the websocket command endpoint. Inbound request
// envelopes run through the command runner one at a time per
// connection and are answered with a correlated response; server
// pushes fan out to every tracked client. It implements
// port.ClientDispatcher.
type Controller struct {
	runner port.CommandRunner

	mu           sync.Mutex
	clients      map[string]*client
	listeners    map[int]func(clientID string)
	nextListener int
}

func NewController(runner port.CommandRunner) *Controller {
	return &Controller{
		runner:    runner,
		clients:   make(map[string]*client),
		listeners: make(map[int]func(string)),
	}
}

// ServeHTTP upgrades the connection and starts its read loop.
func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.Must(uuid.NewV4()).String()
	cl := &client{conn: conn}

	c.mu.Lock()
	c.clients[clientID] = cl
	listeners := make([]func(string), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	log.Info().Str("clientId", clientID).Msg("overlay client connected")

	for _, fn := range listeners {
		fn(clientID)
	}

	// Blocks for the lifetime of the connection; the request context
	// stays valid for handlers run on behalf of this client.
	c.readLoop(r.Context(), clientID, cl)
}

// readLoop processes inbound frames serially, so a client's responses
// come back in the order its requests were handled. Malformed frames
// are logged and dropped; the connection stays open.
func (c *Controller) readLoop(ctx context.Context, clientID string, cl *client) {
	defer func() {
		c.mu.Lock()
		delete(c.clients, clientID)
		c.mu.Unlock()
		cl.conn.Close()
		log.Info().Str("clientId", clientID).Msg("overlay client disconnected")
	}()

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.Warn().Err(err).Str("clientId", clientID).Msg("dropping malformed frame")
			continue
		}

		result := c.runner.Run(ctx, req.Action, req.Args)

		err = cl.write(Response{
			Type:      "response",
			Action:    req.Action,
			Success:   result.Success,
			Data:      result.Data,
			RequestID: req.RequestID,
		})
		if err != nil {
			log.Warn().Err(err).Str("clientId", clientID).Msg("failed to send response")
			return
		}
	}
}

// Dispatch sends a server push to exactly one client. Absent or closed
// clients are a no-op.
func (c *Controller) Dispatch(clientID string, cmd port.ClientCommand) {
	c.mu.Lock()
	cl, ok := c.clients[clientID]
	c.mu.Unlock()
	if !ok {
		return
	}

	err := cl.write(push{Type: "request", Action: cmd.Action, Args: cmd.Args})
	if err != nil {
		log.Warn().Err(err).Str("clientId", clientID).Str("action", cmd.Action).
			Msg("failed to push command")
	}
}

// DispatchAll fans a push out to every tracked client. One client's
// failure never affects the others.
func (c *Controller) DispatchAll(cmd port.ClientCommand) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.clients))
	for id := range c.clients {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.Dispatch(id, cmd)
	}
}

// AddNewClientListener registers a callback fired when a connection is
// accepted. The returned function removes it again.
func (c *Controller) AddNewClientListener(fn func(clientID string)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}
