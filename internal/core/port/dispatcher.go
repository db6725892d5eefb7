package port

// ClientCommand is a server-initiated push to overlay clients. It goes
// out as a request-shaped envelope without a correlation id; no reply
// is expected.
type ClientCommand struct {
	Action string
	Args   any
}

// ClientDispatcher fans server pushes out to connected overlay clients.
// A dispatch to an absent or closed client is a no-op; one client's
// failure never affects the others.
type ClientDispatcher interface {
	// Dispatch sends a command to exactly one client.
	Dispatch(clientID string, cmd ClientCommand)
	// DispatchAll sends a command to every tracked client.
	DispatchAll(cmd ClientCommand)
	// AddNewClientListener registers a callback fired synchronously when
	// a connection is accepted, so collaborators can push initial state.
	// The returned function removes the listener.
	AddNewClientListener(fn func(clientID string)) (remove func())
}
