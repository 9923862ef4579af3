package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/auth"
	"github.com/monster-anshu/api-social-media/internal/service/follows"
	"github.com/monster-anshu/api-social-media/internal/store"
)

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	store   store.Store
	follows *follows.Service
	log     *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, followSvc *follows.Service, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store:   st,
		follows: followSvc,
		log:     logger,
	}
}

// UserResponse represents a user in API responses. The password hash
// never leaves the store layer.
type UserResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	IsOnline       bool   `json:"isOnline"`
	ProfilePicture string `json:"profilePicture"`
	CoverPicture   string `json:"coverPicture"`
	Description    string `json:"description"`
	City           string `json:"city"`
	HomeTown       string `json:"homeTown"`
	Relationship   int    `json:"relationship"`
}

// ProfileResponse is a user with social counters.
type ProfileResponse struct {
	UserResponse
	FollowerCount  int  `json:"followerCount"`
	FollowingCount int  `json:"followingCount"`
	PostCount      int  `json:"postCount"`
	AmIFollowing   bool `json:"amIFollowing"`
	IsFollowingMe  bool `json:"isFollowingMe"`
}

// UpdateProfileRequest carries the mutable profile fields. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=3"`
	Password       *string `json:"password" binding:"omitempty,min=8"`
	ProfilePicture *string `json:"profilePicture"`
	CoverPicture   *string `json:"coverPicture"`
	Description    *string `json:"description"`
	City           *string `json:"city"`
	HomeTown       *string `json:"homeTown"`
	Relationship   *int    `json:"relationship" binding:"omitempty,min=0,max=3"`
}

func toUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		IsOnline:       u.IsOnline,
		ProfilePicture: u.ProfilePicture,
		CoverPicture:   u.CoverPicture,
		Description:    u.Description,
		City:           u.City,
		HomeTown:       u.HomeTown,
		Relationship:   u.Relationship,
	}
}

func toProfileResponse(p *store.Profile) ProfileResponse {
	resp := ProfileResponse{
		UserResponse:   toUserResponse(&p.User),
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		PostCount:      p.PostCount,
		AmIFollowing:   p.AmIFollowing,
		IsFollowingMe:  p.IsFollowingMe,
	}
	// Email is private to the account owner.
	resp.Email = ""
	return resp
}

// Me returns the authenticated user's own profile.
// GET /api/users/me
func (h *UserHandlers) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	profile, err := h.store.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load own profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := toProfileResponse(profile)
	resp.Email = profile.Email
	c.JSON(http.StatusOK, resp)
}

// UpdateMe applies partial updates to the authenticated user's profile.
// PUT /api/users/me
func (h *UserHandlers) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid profile update request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	upd := store.ProfileUpdate{
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
		CoverPicture:   req.CoverPicture,
		Description:    req.Description,
		City:           req.City,
		HomeTown:       req.HomeTown,
		Relationship:   req.Relationship,
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to hash password")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		upd.PasswordHash = &hash
	}

	if err := h.store.UpdateProfile(c.Request.Context(), userID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to update profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to reload user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// SearchUsers handles searching for users by display name.
// GET /api/users/search?q=query
func (h *UserHandlers) SearchUsers(c *gin.Context) {
	trimmed := strings.TrimSpace(c.Query("q"))
	if len(trimmed) < 3 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "search query must be at least 3 characters"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.store.SearchUsersByName(c.Request.Context(), trimmed)
	if err != nil {
		h.log.Error().Err(err).Str("query", trimmed).Msg("failed to search users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0)
	for _, u := range users {
		// The caller never appears in their own search results.
		if u.ID == userID {
			continue
		}
		resp := toUserResponse(u)
		resp.Email = ""
		response = append(response, resp)
	}

	c.JSON(http.StatusOK, response)
}

// GetProfile returns another user's profile with counters relative to
// the viewer.
// GET /api/users/id/:id
func (h *UserHandlers) GetProfile(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	targetID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	profile, err := h.store.GetProfile(c.Request.Context(), targetID, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", targetID).Msg("failed to load profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Followers lists a user's followers, paged.
// GET /api/users/id/:id/followers?page=1
func (h *UserHandlers) Followers(c *gin.Context) {
	h.listRelations(c, h.follows.Followers)
}

// Following lists who a user follows, paged.
// GET /api/users/id/:id/following?page=1
func (h *UserHandlers) Following(c *gin.Context) {
	h.listRelations(c, h.follows.Following)
}

func (h *UserHandlers) listRelations(c *gin.Context, list func(ctx context.Context, userID int64, page int) ([]*store.User, error)) {
	targetID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	users, err := list(c.Request.Context(), targetID, page)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", targetID).Msg("failed to list relations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp := toUserResponse(u)
		resp.Email = ""
		response = append(response, resp)
	}
	c.JSON(http.StatusOK, response)
}

// Follow makes the authenticated user follow :id.
// PUT /api/users/follow/:id
func (h *UserHandlers) Follow(c *gin.Context) {
	h.toggleFollow(c, true)
}

// Unfollow makes the authenticated user unfollow :id.
// PUT /api/users/unfollow/:id
func (h *UserHandlers) Unfollow(c *gin.Context) {
	h.toggleFollow(c, false)
}

func (h *UserHandlers) toggleFollow(c *gin.Context, follow bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	targetID, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	if follow {
		err = h.follows.Follow(c.Request.Context(), userID, targetID)
	} else {
		err = h.follows.Unfollow(c.Request.Context(), userID, targetID)
	}
	if err != nil {
		switch {
		case errors.Is(err, follows.ErrCannotFollowSelf):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot follow yourself"})
		case errors.Is(err, follows.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, follows.ErrAlreadyFollowing):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "already following"})
		case errors.Is(err, follows.ErrNotFollowing):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "not following"})
		default:
			h.log.Error().Err(err).Int64("user_id", userID).Int64("target_id", targetID).Msg("follow toggle failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
