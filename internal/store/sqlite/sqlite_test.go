package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/monster-anshu/api-social-media/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createUser(t *testing.T, st *SQLiteStore, username string) *store.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), username, "Name "+username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created := createUser(t, st, "alice")

	byID, err := st.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" || byID.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byEmail, err := st.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected id %d, got %d", created.ID, byEmail.ID)
	}

	if _, err := st.GetUserByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOnlineAndOffline(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, st, "alice")

	ok, err := st.SetOnline(ctx, user.ID, "socket-1")
	if err != nil {
		t.Fatalf("set online: %v", err)
	}
	if !ok {
		t.Fatalf("expected SetOnline to match the user row")
	}

	socketID, err := st.GetSocketID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get socket id: %v", err)
	}
	if socketID == nil || *socketID != "socket-1" {
		t.Fatalf("expected socket-1, got %v", socketID)
	}

	// A stale handle must not clear the fresh one.
	if err := st.SetOffline(ctx, "socket-stale"); err != nil {
		t.Fatalf("set offline stale: %v", err)
	}
	socketID, err = st.GetSocketID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get socket id after stale offline: %v", err)
	}
	if socketID == nil || *socketID != "socket-1" {
		t.Fatalf("stale offline clobbered the live handle: %v", socketID)
	}

	if err := st.SetOffline(ctx, "socket-1"); err != nil {
		t.Fatalf("set offline: %v", err)
	}
	socketID, err = st.GetSocketID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get socket id after offline: %v", err)
	}
	if socketID != nil {
		t.Fatalf("expected nil socket id, got %v", *socketID)
	}
}

func TestSetOnlineUnknownUser(t *testing.T) {
	st := newTestStore(t)

	ok, err := st.SetOnline(context.Background(), 42, "socket-1")
	if err != nil {
		t.Fatalf("set online: %v", err)
	}
	if ok {
		t.Fatalf("expected SetOnline to report no matched row")
	}
}

func TestListOnlineCapped(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 45; i++ {
		user := createUser(t, st, fmt.Sprintf("user%02d", i))
		if _, err := st.SetOnline(ctx, user.ID, fmt.Sprintf("socket-%d", i)); err != nil {
			t.Fatalf("set online %d: %v", i, err)
		}
	}

	online, err := st.ListOnline(ctx, 40)
	if err != nil {
		t.Fatalf("list online: %v", err)
	}
	if len(online) != 40 {
		t.Fatalf("expected 40 online users, got %d", len(online))
	}
	for _, u := range online {
		if !u.IsOnline || u.SocketID == "" {
			t.Fatalf("unexpected online entry: %+v", u)
		}
	}
}

func TestFollowAndCounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	if err := st.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	following, err := st.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("is following: %v", err)
	}
	if !following {
		t.Fatalf("expected alice to follow bob")
	}

	profile, err := st.GetProfile(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.FollowerCount != 1 {
		t.Fatalf("expected 1 follower, got %d", profile.FollowerCount)
	}
	if !profile.AmIFollowing {
		t.Fatalf("expected AmIFollowing")
	}
	if profile.IsFollowingMe {
		t.Fatalf("did not expect IsFollowingMe")
	}

	if err := st.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	following, err = st.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("is following after unfollow: %v", err)
	}
	if following {
		t.Fatalf("expected unfollow to remove the relationship")
	}
}

func TestAppendMessageUpsertsConversation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")
	pairKey := fmt.Sprintf("dm:%d:%d", alice.ID, bob.ID)

	first := &store.ChatMessage{ID: uuid.NewString(), SenderID: alice.ID, Text: "hi", CreatedAt: time.Now().UTC()}
	if err := st.AppendMessage(ctx, pairKey, alice.ID, bob.ID, first); err != nil {
		t.Fatalf("append first: %v", err)
	}

	second := &store.ChatMessage{ID: uuid.NewString(), SenderID: bob.ID, Text: "hello", CreatedAt: time.Now().UTC()}
	if err := st.AppendMessage(ctx, pairKey, alice.ID, bob.ID, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	messages, err := st.ListMessages(ctx, pairKey)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != first.ID || messages[1].ID != second.ID {
		t.Fatalf("messages out of append order: %s then %s", messages[0].ID, messages[1].ID)
	}
	if messages[0].ConversationID != messages[1].ConversationID {
		t.Fatalf("expected both messages in one conversation")
	}
}

func TestListMessagesUnknownPairIsEmpty(t *testing.T) {
	st := newTestStore(t)

	messages, err := st.ListMessages(context.Background(), "dm:1:2")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty history, got %d", len(messages))
	}
}

func TestListPartners(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")
	carol := createUser(t, st, "carol")

	msg := func(sender, other int64) {
		a, b := sender, other
		if b < a {
			a, b = b, a
		}
		pairKey := fmt.Sprintf("dm:%d:%d", a, b)
		m := &store.ChatMessage{ID: uuid.NewString(), SenderID: sender, Text: "hi", CreatedAt: time.Now().UTC()}
		if err := st.AppendMessage(ctx, pairKey, a, b, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msg(alice.ID, bob.ID)
	msg(carol.ID, alice.ID)

	partners, err := st.ListPartners(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list partners: %v", err)
	}
	if len(partners) != 2 {
		t.Fatalf("expected 2 partners, got %d", len(partners))
	}
	seen := map[int64]bool{}
	for _, p := range partners {
		seen[p.ID] = true
	}
	if !seen[bob.ID] || !seen[carol.ID] {
		t.Fatalf("expected bob and carol, got %v", seen)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, st, "alice")

	city := "Berlin"
	if err := st.UpdateProfile(ctx, user.ID, store.ProfileUpdate{City: &city}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	updated, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.City != "Berlin" {
		t.Fatalf("expected city update, got %q", updated.City)
	}
	if updated.Name != user.Name {
		t.Fatalf("name changed unexpectedly: %q", updated.Name)
	}
}

func TestPostLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	post, err := st.CreatePost(ctx, alice.ID, "first post", "", []string{"go", "chat"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	liked, err := st.ToggleLike(ctx, post.ID, bob.ID)
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if !liked {
		t.Fatalf("expected post to be liked")
	}

	liked, err = st.ToggleLike(ctx, post.ID, bob.ID)
	if err != nil {
		t.Fatalf("toggle like again: %v", err)
	}
	if liked {
		t.Fatalf("expected second toggle to unlike")
	}

	if _, err := st.AddComment(ctx, post.ID, bob.ID, "nice"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	loaded, err := st.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if len(loaded.Comments) != 1 || loaded.Comments[0].Text != "nice" {
		t.Fatalf("unexpected comments: %+v", loaded.Comments)
	}
	if len(loaded.Tags) != 2 {
		t.Fatalf("unexpected tags: %v", loaded.Tags)
	}

	if err := st.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := st.GetPostByID(ctx, post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFeedIncludesFollowedUsers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")
	carol := createUser(t, st, "carol")

	if err := st.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	if _, err := st.CreatePost(ctx, alice.ID, "mine", "", nil); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := st.CreatePost(ctx, bob.ID, "followed", "", nil); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := st.CreatePost(ctx, carol.ID, "stranger", "", nil); err != nil {
		t.Fatalf("create post: %v", err)
	}

	feed, err := st.Feed(ctx, alice.ID, 50)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(feed))
	}
	for _, p := range feed {
		if p.UserID == carol.ID {
			t.Fatalf("feed leaked post from unfollowed user")
		}
	}
}
