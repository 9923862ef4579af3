package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	// InboundTypeAnnounce is sent by the client after connecting to
	// bind its authenticated identity to the connection.
	InboundTypeAnnounce = "announce-online"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	// EventOnlineUsers carries the full online-user snapshot, pushed to
	// every connection after each connect/disconnect.
	EventOnlineUsers = "online-users-updated"
	// EventChatMessage carries a direct message pushed to the
	// recipient's live connection.
	EventChatMessage = "receive-chat"
)

// AnnounceData binds a JWT to the connection.
type AnnounceData struct {
	Token string `json:"token"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// OnlineUser is one entry of the online snapshot.
type OnlineUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	SocketID string `json:"socketId"`
	IsOnline bool   `json:"isOnline"`
}

// ChatMessage is a direct message pushed to a live recipient.
type ChatMessage struct {
	ID        string `json:"id"`
	Sender    int64  `json:"sender"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"` // RFC3339
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
