package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/store"
)

// PostHandlers provides HTTP handlers for post operations.
type PostHandlers struct {
	store     store.Store
	feedLimit int
	log       *zerolog.Logger
}

// NewPostHandlers creates a new post handlers instance.
func NewPostHandlers(st store.Store, feedLimit int, logger *zerolog.Logger) *PostHandlers {
	if feedLimit <= 0 {
		feedLimit = 50
	}
	return &PostHandlers{
		store:     st,
		feedLimit: feedLimit,
		log:       logger,
	}
}

// CreatePostRequest represents the post creation body.
type CreatePostRequest struct {
	Description string   `json:"description" binding:"required,notblank"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
}

// UpdatePostRequest carries the author-editable post fields.
type UpdatePostRequest struct {
	Description *string  `json:"description" binding:"omitempty,notblank"`
	Image       *string  `json:"image"`
	Tags        []string `json:"tags"`
}

// CommentRequest represents a comment creation body.
type CommentRequest struct {
	Text string `json:"text" binding:"required,notblank"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"userId"`
	Description string            `json:"description"`
	Image       string            `json:"image,omitempty"`
	Tags        []string          `json:"tags"`
	Likes       []int64           `json:"likes"`
	Comments    []CommentResponse `json:"comments"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// LikeResponse reports the like state after a toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
}

func toPostResponse(p *store.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	likes := p.Likes
	if likes == nil {
		likes = []int64{}
	}
	comments := make([]CommentResponse, 0, len(p.Comments))
	for _, cm := range p.Comments {
		comments = append(comments, CommentResponse{
			ID:        cm.ID,
			UserID:    cm.UserID,
			Text:      cm.Text,
			CreatedAt: cm.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return PostResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Description: p.Description,
		Image:       p.Image,
		Tags:        tags,
		Likes:       likes,
		Comments:    comments,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles post creation.
// POST /api/posts
func (h *PostHandlers) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create post request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), userID, req.Description, req.Image, req.Tags)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to create post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, toPostResponse(post))
}

// Get returns a single post with likes and comments.
// GET /api/posts/:id
func (h *PostHandlers) Get(c *gin.Context) {
	postID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid post id"})
		return
	}

	post, err := h.store.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return
		}
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to load post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toPostResponse(post))
}

// Update edits a post. Only the author may edit.
// PUT /api/posts/:id
func (h *PostHandlers) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	postID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid post id"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update post request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	post, err := h.loadOwnPost(c, postID, userID)
	if err != nil {
		return
	}

	upd := store.PostUpdate{
		Description: req.Description,
		Image:       req.Image,
		Tags:        req.Tags,
	}
	if err := h.store.UpdatePost(c.Request.Context(), post.ID, upd); err != nil {
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to update post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	updated, err := h.store.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to reload post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toPostResponse(updated))
}

// Delete removes a post. Only the author may delete.
// DELETE /api/posts/:id
func (h *PostHandlers) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	postID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid post id"})
		return
	}

	post, err := h.loadOwnPost(c, postID, userID)
	if err != nil {
		return
	}

	if err := h.store.DeletePost(c.Request.Context(), post.ID); err != nil {
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to delete post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike likes a post, or unlikes it when already liked.
// PUT /api/posts/:id/like
func (h *PostHandlers) ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	postID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid post id"})
		return
	}

	liked, err := h.store.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return
		}
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to toggle like")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, LikeResponse{Liked: liked})
}

// AddComment appends a comment to a post.
// POST /api/posts/:id/comments
func (h *PostHandlers) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	postID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid post id"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid comment request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	comment, err := h.store.AddComment(c.Request.Context(), postID, userID, req.Text)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return
		}
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to add comment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ListByUser returns a user's posts, newest first.
// GET /api/posts/user/:id
func (h *PostHandlers) ListByUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	posts, err := h.store.ListPostsByUser(c.Request.Context(), targetID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", targetID).Msg("failed to list posts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, toPostResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// Feed returns the authenticated user's timeline.
// GET /api/posts/feed
func (h *PostHandlers) Feed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	posts, err := h.store.Feed(c.Request.Context(), userID, h.feedLimit)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load feed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, toPostResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// loadOwnPost fetches a post and enforces author ownership, writing the
// error response itself when it fails.
func (h *PostHandlers) loadOwnPost(c *gin.Context, postID, userID int64) (*store.Post, error) {
	post, err := h.store.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return nil, err
		}
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to load post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, err
	}
	if post.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the post author"})
		return nil, errors.New("not the post author")
	}
	return post, nil
}
