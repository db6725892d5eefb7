package port

// ChatEvent is one inbound chat message from a live-chat collaborator.
type ChatEvent struct {
	// UserID identifies the sender within the chat provider; the router
	// keys pending disambiguations on it.
	UserID string
	Text   string
	// Admin marks room moderators; only admins may remove or move
	// someone else's request from chat.
	Admin bool
	// Privileged marks paying viewers (guards, superchats); their
	// requests are pinned to the front of the queue.
	Privileged bool
}
