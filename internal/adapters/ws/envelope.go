package ws

import "encoding/json"

// Request is the request-shaped wire envelope. Client-issued requests
// carry a correlation id; server pushes reuse the same shape without
// one and expect no reply.
type Request struct {
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	Args      json.RawMessage `json:"args"`
	RequestID string          `json:"requestId,omitempty"`
}

// Response answers exactly one Request, echoing its correlation id.
// Callers treat a request unanswered within their own window as failed;
// the server never times a command out.
type Response struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"requestId"`
}

// push is the server-initiated frame for client commands.
type push struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Args   any    `json:"args"`
}
