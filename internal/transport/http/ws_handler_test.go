package http

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/monster-anshu/api-social-media/internal/proto"
)

func dialWS(t *testing.T, env *testEnv, ctx context.Context) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(env.server.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func announce(t *testing.T, ctx context.Context, conn *websocket.Conn, token string) {
	t.Helper()

	payload, err := json.Marshal(proto.AnnounceData{Token: token})
	if err != nil {
		t.Fatalf("marshal announce: %v", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeAnnounce, Data: payload}); err != nil {
		t.Fatalf("write announce: %v", err)
	}
}

func readOutbound(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Outbound {
	t.Helper()

	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return outbound
}

func TestWSAnnounceBroadcastsOnlineUsers(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.registerUser(t, "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, env, ctx)
	announce(t, ctx, conn, token)

	outbound := readOutbound(t, ctx, conn)
	if outbound.Type != proto.OutboundTypeEvent || outbound.Event != proto.EventOnlineUsers {
		t.Fatalf("unexpected frame: %+v", outbound)
	}

	raw, _ := json.Marshal(outbound.Data)
	var online []proto.OnlineUser
	if err := json.Unmarshal(raw, &online); err != nil {
		t.Fatalf("decode online users: %v", err)
	}
	if len(online) != 1 || online[0].UserID != userID {
		t.Fatalf("unexpected snapshot: %+v", online)
	}
}

func TestWSAnnounceInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, env, ctx)
	announce(t, ctx, conn, "garbage-token")

	outbound := readOutbound(t, ctx, conn)
	if outbound.Type != proto.OutboundTypeError || outbound.Error == nil || outbound.Error.Code != "unauthorized" {
		t.Fatalf("expected unauthorized error frame, got %+v", outbound)
	}
}

func TestWSUnknownMessageType(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, env, ctx)
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	outbound := readOutbound(t, ctx, conn)
	if outbound.Type != proto.OutboundTypeError || outbound.Error == nil || outbound.Error.Code != "invalid_message" {
		t.Fatalf("expected invalid_message error frame, got %+v", outbound)
	}
}

func TestWSReceiveChatMessage(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.registerUser(t, "alice")
	bobToken, bobID := env.registerUser(t, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, env, ctx)
	announce(t, ctx, conn, bobToken)

	// First frame is the online snapshot.
	outbound := readOutbound(t, ctx, conn)
	if outbound.Event != proto.EventOnlineUsers {
		t.Fatalf("expected online snapshot first, got %+v", outbound)
	}
	status := env.doJSON(t, "POST", fmt.Sprintf("/api/chat/%d", bobID), aliceToken, SendMessageRequest{Text: "ping"}, nil)
	if status != 201 {
		t.Fatalf("expected 201, got %d", status)
	}

	outbound = readOutbound(t, ctx, conn)
	if outbound.Type != proto.OutboundTypeEvent || outbound.Event != proto.EventChatMessage {
		t.Fatalf("expected chat message event, got %+v", outbound)
	}

	raw, _ := json.Marshal(outbound.Data)
	var msg proto.ChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode chat message: %v", err)
	}
	if msg.Sender != aliceID || msg.Text != "ping" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
