package presence

import (
	"github.com/google/uuid"

	"github.com/monster-anshu/api-social-media/internal/store"
)

// EventKind is a notification the registry pushes to clients.
type EventKind int

const (
	// EventOnlineUsers delivers the current online-user snapshot.
	EventOnlineUsers EventKind = iota
	// EventChatMessage delivers a direct message to the recipient.
	EventChatMessage
)

// Event is sent to a live connection's write loop.
type Event struct {
	Kind    EventKind
	Online  []*store.OnlineUser
	Message *store.ChatMessage
}

// Client is one live realtime connection. Handle is the connection
// handle stored on the user record while the connection is announced;
// UserID stays zero until the client announces its identity.
type Client struct {
	Handle string
	UserID int64
	Events chan *Event
}

// NewClient constructs a client with a fresh connection handle.
func NewClient() *Client {
	return &Client{
		Handle: uuid.NewString(),
		Events: make(chan *Event, 8),
	}
}
