package presence

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/store"
)

// OnlineListLimit caps the broadcast snapshot.
const OnlineListLimit = 40

// Hub is the presence registry. It owns the map of live connections and
// mirrors each connect/disconnect into the user record with a single
// atomic store update. Presence is best-effort: store failures are
// logged and swallowed so they never abort a connection lifecycle.
type Hub struct {
	store        store.Store
	log          *zerolog.Logger
	storeTimeout time.Duration

	register   chan *Client
	unregister chan *Client
	announce   chan announceReq
	deliver    chan deliverReq
	done       chan struct{}

	// connection handle -> client, owned by the Run goroutine
	clients map[string]*Client
}

type announceReq struct {
	client *Client
	userID int64
}

type deliverReq struct {
	socketID string
	msg      *store.ChatMessage
}

// NewHub creates a presence hub backed by the given store.
func NewHub(st store.Store, logger *zerolog.Logger, storeTimeout time.Duration) *Hub {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Hub{
		store:        st,
		log:          logger,
		storeTimeout: storeTimeout,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		announce:     make(chan announceReq),
		deliver:      make(chan deliverReq, 16),
		done:         make(chan struct{}),
		clients:      make(map[string]*Client),
	}
}

// Run processes registry events until ctx is cancelled. All access to
// the clients map happens here, so no lock is needed. After Run returns
// the public methods become no-ops instead of blocking forever.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client.Handle] = client

		case req := <-h.announce:
			h.markOnline(req.client, req.userID)

		case client := <-h.unregister:
			h.markOffline(client)

		case req := <-h.deliver:
			h.push(req.socketID, &Event{Kind: EventChatMessage, Message: req.msg})

		case <-ctx.Done():
			for handle, client := range h.clients {
				close(client.Events)
				delete(h.clients, handle)
			}
			return
		}
	}
}

// Register adds a connection to the registry. The connection stays
// invisible to presence until it announces a user identity.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a connection and clears its user's presence.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Announce binds an authenticated user identity to the connection,
// marks the user online and broadcasts the updated snapshot.
func (h *Hub) Announce(client *Client, userID int64) {
	select {
	case h.announce <- announceReq{client: client, userID: userID}:
	case <-h.done:
	}
}

// Deliver pushes msg to the recipient's live connection, if any.
// The connection handle is read fresh from the store on every call.
// Returns false when the recipient is offline or the lookup failed;
// delivery is fire-and-forget either way.
func (h *Hub) Deliver(ctx context.Context, recipientID int64, msg *store.ChatMessage) bool {
	socketID, err := h.store.GetSocketID(ctx, recipientID)
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", recipientID).Msg("presence lookup failed")
		return false
	}
	if socketID == nil {
		return false
	}
	select {
	case h.deliver <- deliverReq{socketID: *socketID, msg: msg}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) markOnline(client *Client, userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), h.storeTimeout)
	defer cancel()

	// Look up a possibly superseded handle before overwriting it.
	prior, err := h.store.GetSocketID(ctx, userID)
	if err != nil && !isNotFound(err) {
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("presence lookup failed")
	}

	ok, err := h.store.SetOnline(ctx, userID, client.Handle)
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("mark online failed")
		return
	}
	if !ok {
		h.log.Warn().Int64("user_id", userID).Msg("announce for unknown user ignored")
		return
	}

	// A reconnect from a second device supersedes the prior connection;
	// close it so it does not linger as a dead handle.
	if prior != nil && *prior != client.Handle {
		if old, exists := h.clients[*prior]; exists {
			close(old.Events)
			delete(h.clients, *prior)
		}
	}

	client.UserID = userID
	h.log.Debug().Int64("user_id", userID).Str("socket_id", client.Handle).Msg("user online")
	h.broadcastOnline(ctx)
}

func (h *Hub) markOffline(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), h.storeTimeout)
	defer cancel()

	if current, exists := h.clients[client.Handle]; exists {
		close(current.Events)
		delete(h.clients, client.Handle)
	}

	// Matching on the handle keeps this a no-op for superseded
	// connections: the user record already points at the new handle.
	if err := h.store.SetOffline(ctx, client.Handle); err != nil {
		h.log.Warn().Err(err).Str("socket_id", client.Handle).Msg("mark offline failed")
	}

	if client.UserID != 0 {
		h.log.Debug().Int64("user_id", client.UserID).Str("socket_id", client.Handle).Msg("user offline")
		h.broadcastOnline(ctx)
	}
}

func (h *Hub) broadcastOnline(ctx context.Context) {
	online, err := h.store.ListOnline(ctx, OnlineListLimit)
	if err != nil {
		h.log.Warn().Err(err).Msg("list online failed")
		return
	}

	event := &Event{Kind: EventOnlineUsers, Online: online}
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

func (h *Hub) push(socketID string, event *Event) {
	client, exists := h.clients[socketID]
	if !exists {
		return
	}
	select {
	case client.Events <- event:
	default:
		h.log.Warn().Str("socket_id", socketID).Msg("dropped event for slow client")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
