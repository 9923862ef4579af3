package http

import (
	"fmt"
	"net/http"
	"testing"
)

func TestPostCRUD(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.registerUser(t, "alice")
	bobToken, _ := env.registerUser(t, "bob")

	var created PostResponse
	status := env.doJSON(t, http.MethodPost, "/api/posts", aliceToken, CreatePostRequest{
		Description: "my first post",
		Tags:        []string{"go"},
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.UserID != aliceID || created.Description != "my first post" {
		t.Fatalf("unexpected post: %+v", created)
	}

	desc := "edited"
	var updated PostResponse
	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), aliceToken, UpdatePostRequest{Description: &desc}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if updated.Description != "edited" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	// Only the author may edit or delete.
	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", created.ID), bobToken, UpdatePostRequest{Description: &desc}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	status = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), bobToken, nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}

	status = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", created.ID), aliceToken, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), aliceToken, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestPostBlankDescriptionRejected(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "alice")

	status := env.doJSON(t, http.MethodPost, "/api/posts", token, CreatePostRequest{Description: "   "}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank description, got %d", status)
	}
}

func TestLikeAndComment(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerUser(t, "alice")
	bobToken, bobID := env.registerUser(t, "bob")

	var created PostResponse
	status := env.doJSON(t, http.MethodPost, "/api/posts", aliceToken, CreatePostRequest{Description: "like me"}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	var like LikeResponse
	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/posts/%d/like", created.ID), bobToken, nil, &like)
	if status != http.StatusOK || !like.Liked {
		t.Fatalf("expected liked=true, got status %d, %+v", status, like)
	}

	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/posts/%d/like", created.ID), bobToken, nil, &like)
	if status != http.StatusOK || like.Liked {
		t.Fatalf("expected toggle to unlike, got %+v", like)
	}

	var comment CommentResponse
	status = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", created.ID), bobToken, CommentRequest{Text: "nice"}, &comment)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if comment.UserID != bobID || comment.Text != "nice" {
		t.Fatalf("unexpected comment: %+v", comment)
	}

	var loaded PostResponse
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), aliceToken, nil, &loaded)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(loaded.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(loaded.Comments))
	}
}

func TestFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerUser(t, "alice")
	bobToken, bobID := env.registerUser(t, "bob")
	carolToken, carolID := env.registerUser(t, "carol")

	status := env.doJSON(t, http.MethodPost, "/api/posts", bobToken, CreatePostRequest{Description: "bob post"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	status = env.doJSON(t, http.MethodPost, "/api/posts", carolToken, CreatePostRequest{Description: "carol post"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/users/follow/%d", bobID), aliceToken, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}

	var feed []PostResponse
	status = env.doJSON(t, http.MethodGet, "/api/posts/feed", aliceToken, nil, &feed)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(feed) != 1 || feed[0].UserID != bobID {
		t.Fatalf("unexpected feed: %+v", feed)
	}
	for _, p := range feed {
		if p.UserID == carolID {
			t.Fatalf("feed leaked unfollowed user's post")
		}
	}
}
