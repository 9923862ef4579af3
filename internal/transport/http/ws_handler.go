package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/auth"
	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/proto"
)

const wsInboundRateLimit = 60 // frames per minute

// WSHandler upgrades HTTP connections and bridges them to the presence
// registry.
type WSHandler struct {
	hub          *presence.Hub
	auth         *auth.Service
	messageLimit int64
	log          *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. It is mounted outside
// gin: the upgrade hijacks the connection and needs the raw
// http.ResponseWriter.
func NewWSHandler(hub *presence.Hub, authService *auth.Service, messageLimit int64, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:          hub,
		auth:         authService,
		messageLimit: messageLimit,
		log:          logger,
	}
}

// ServeHTTP serves one realtime connection. The connection carries no
// identity until the client announces with a valid token.
func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.messageLimit > 0 {
		conn.SetReadLimit(h.messageLimit)
	}

	client := presence.NewClient()
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *presence.Client) error {
	limiter := newRateLimiter(wsInboundRateLimit, time.Minute)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "rate_limited", Msg: "too many messages"},
			}); err != nil {
				return err
			}
			continue
		}

		switch inbound.Type {
		case proto.InboundTypeAnnounce:
			var announce proto.AnnounceData
			if err := json.Unmarshal(inbound.Data, &announce); err != nil {
				return err
			}
			claims, err := h.auth.ValidateToken(announce.Token)
			if err != nil {
				h.log.Debug().Err(err).Str("socket_id", client.Handle).Msg("announce with invalid token")
				if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
					Type:  proto.OutboundTypeError,
					Error: &proto.Error{Code: "unauthorized", Msg: "invalid token"},
				}); writeErr != nil {
					return writeErr
				}
				continue
			}
			h.hub.Announce(client, claims.UserID)

		default:
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "invalid_message", Msg: "unknown message type"},
			}); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *presence.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("socket_id", client.Handle).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
