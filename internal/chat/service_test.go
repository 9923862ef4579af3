package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/store"
	"github.com/monster-anshu/api-social-media/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *presence.Hub, store.Store) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(sqlite.Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	hub := presence.NewHub(st, &logger, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return NewService(st, hub, &logger), hub, st
}

func createUser(t *testing.T, st store.Store, username string) *store.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), username, "Name "+username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestPairKeyCommutative(t *testing.T) {
	if PairKey(3, 7) != PairKey(7, 3) {
		t.Fatalf("pair key is not commutative: %s vs %s", PairKey(3, 7), PairKey(7, 3))
	}
	if PairKey(3, 7) != "dm:3:7" {
		t.Fatalf("unexpected pair key: %s", PairKey(3, 7))
	}
}

func TestSendRejectsEmptyText(t *testing.T) {
	svc, _, st := newTestService(t)
	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	if _, err := svc.Send(context.Background(), alice.ID, bob.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	// Rejected messages never reach the log.
	messages, err := st.ListMessages(context.Background(), PairKey(alice.ID, bob.ID))
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %d", len(messages))
	}
}

func TestSendRejectsSelfMessage(t *testing.T) {
	svc, _, st := newTestService(t)
	alice := createUser(t, st, "alice")

	if _, err := svc.Send(context.Background(), alice.ID, alice.ID, "hi me"); !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("expected ErrSelfMessage, got %v", err)
	}
}

func TestSendUnknownRecipient(t *testing.T) {
	svc, _, st := newTestService(t)
	alice := createUser(t, st, "alice")

	if _, err := svc.Send(context.Background(), alice.ID, 999, "hello?"); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestSendPersistsWhenRecipientOffline(t *testing.T) {
	svc, _, st := newTestService(t)
	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	msg, err := svc.Send(context.Background(), alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID == "" {
		t.Fatalf("expected message id")
	}

	messages, err := svc.History(context.Background(), bob.ID, alice.ID, false)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "hello" {
		t.Fatalf("expected persisted message, got %+v", messages)
	}
}

func TestSendPushesToOnlineRecipient(t *testing.T) {
	svc, hub, st := newTestService(t)
	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	client := presence.NewClient()
	hub.Register(client)
	hub.Announce(client, bob.ID)

	// Drain the online snapshot broadcast.
	waitForKind := func(kind presence.EventKind) *presence.Event {
		deadline := time.After(2 * time.Second)
		for {
			select {
			case event, ok := <-client.Events:
				if !ok {
					t.Fatalf("events channel closed")
				}
				if event.Kind == kind {
					return event
				}
			case <-deadline:
				t.Fatalf("timed out waiting for event kind %d", kind)
			}
		}
	}
	waitForKind(presence.EventOnlineUsers)

	sent, err := svc.Send(context.Background(), alice.ID, bob.ID, "ping")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	event := waitForKind(presence.EventChatMessage)
	if event.Message.ID != sent.ID || event.Message.Text != "ping" {
		t.Fatalf("unexpected pushed message: %+v", event.Message)
	}
}

func TestHistoryOrdering(t *testing.T) {
	svc, _, st := newTestService(t)
	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		msg, err := svc.Send(ctx, alice.ID, bob.ID, fmt.Sprintf("msg %d", i))
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		ids = append(ids, msg.ID)
	}

	asc, err := svc.History(ctx, alice.ID, bob.ID, false)
	if err != nil {
		t.Fatalf("history asc: %v", err)
	}
	if len(asc) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(asc))
	}
	for i, m := range asc {
		if m.ID != ids[i] {
			t.Fatalf("ascending order broken at %d: %s != %s", i, m.ID, ids[i])
		}
	}

	desc, err := svc.History(ctx, alice.ID, bob.ID, true)
	if err != nil {
		t.Fatalf("history desc: %v", err)
	}
	for i, m := range desc {
		if m.ID != ids[len(ids)-1-i] {
			t.Fatalf("descending order broken at %d", i)
		}
	}
}

func TestPartnersAfterConversation(t *testing.T) {
	svc, _, st := newTestService(t)
	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	if _, err := svc.Send(context.Background(), alice.ID, bob.ID, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	partners, err := svc.Partners(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("partners: %v", err)
	}
	if len(partners) != 1 || partners[0].ID != bob.ID {
		t.Fatalf("expected bob as partner, got %+v", partners)
	}
}
