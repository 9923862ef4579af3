package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User represents a registered account.
type User struct {
	ID             int64
	Username       string
	Name           string
	Email          string
	PasswordHash   string
	SocketID       *string // live connection handle, nil while offline
	IsOnline       bool
	ProfilePicture string
	CoverPicture   string
	Description    string
	City           string
	HomeTown       string
	Relationship   int // 0 unset, 1 single, 2 in relationship, 3 married
	IsAdmin        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OnlineUser is the minimal projection broadcast to connected clients.
type OnlineUser struct {
	ID       int64
	Username string
	SocketID string
	IsOnline bool
}

// Profile is a user enriched with social counters relative to a viewer.
type Profile struct {
	User
	FollowerCount  int
	FollowingCount int
	PostCount      int
	AmIFollowing   bool
	IsFollowingMe  bool
}

// ProfileUpdate holds the mutable profile fields. Nil pointers are left
// untouched by the store.
type ProfileUpdate struct {
	Name           *string
	PasswordHash   *string
	ProfilePicture *string
	CoverPicture   *string
	Description    *string
	City           *string
	HomeTown       *string
	Relationship   *int
}

// Conversation is the message log shared by an unordered pair of users.
// PairKey is derived from the sorted pair so both directions map to the
// same record.
type Conversation struct {
	ID        int64
	PairKey   string
	UserAID   int64
	UserBID   int64
	CreatedAt time.Time
}

// ChatMessage is one entry in a conversation log.
type ChatMessage struct {
	ID             string // UUID
	ConversationID int64
	SenderID       int64
	Text           string
	CreatedAt      time.Time
}

// Post is a feed entry authored by a user.
type Post struct {
	ID          int64
	UserID      int64
	Description string
	Image       string
	Tags        []string
	Likes       []int64
	Comments    []Comment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostUpdate holds the author-editable post fields.
type PostUpdate struct {
	Description *string
	Image       *string
	Tags        []string
}

// Comment is a single comment attached to a post.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, name, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetProfile retrieves a user with follower/following/post counts
	// and relationship flags computed relative to viewerID.
	GetProfile(ctx context.Context, userID, viewerID int64) (*Profile, error)

	// SearchUsersByName retrieves users matching a display name.
	SearchUsersByName(ctx context.Context, name string) ([]*User, error)

	// UpdateProfile applies the non-nil fields of upd to the user.
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error
}

// PresenceStore handles the socket handle and online flag on the user
// record. Every mutation is a single atomic statement so concurrent
// connect/disconnect events cannot interleave partial state.
type PresenceStore interface {
	// SetOnline records the connection handle and flips the online flag.
	// Returns false when no user with that ID exists.
	SetOnline(ctx context.Context, userID int64, socketID string) (bool, error)

	// SetOffline clears the handle and online flag for whichever user
	// currently holds socketID. A stale or superseded handle matches no
	// row and the call is a no-op.
	SetOffline(ctx context.Context, socketID string) error

	// GetSocketID returns the current connection handle for a user, or
	// nil when the user is offline. Always a fresh read.
	GetSocketID(ctx context.Context, userID int64) (*string, error)

	// ListOnline returns up to limit currently-online users in the
	// minimal broadcast projection.
	ListOnline(ctx context.Context, limit int) ([]*OnlineUser, error)
}

// FollowStore handles follow relationships.
type FollowStore interface {
	// Follow records followerID following followeeID.
	Follow(ctx context.Context, followerID, followeeID int64) error

	// Unfollow removes the relationship.
	Unfollow(ctx context.Context, followerID, followeeID int64) error

	// IsFollowing reports whether followerID follows followeeID.
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)

	// ListFollowers lists users following userID, name-sorted, paged.
	ListFollowers(ctx context.Context, userID int64, page, limit int) ([]*User, error)

	// ListFollowing lists users userID follows, name-sorted, paged.
	ListFollowing(ctx context.Context, userID int64, page, limit int) ([]*User, error)
}

// ConversationStore handles the durable per-pair message log.
type ConversationStore interface {
	// AppendMessage appends msg to the conversation identified by
	// pairKey, creating the conversation on first contact (upsert).
	AppendMessage(ctx context.Context, pairKey string, userA, userB int64, msg *ChatMessage) error

	// ListMessages returns the conversation log for pairKey ordered by
	// created_at ascending. A missing conversation yields an empty slice.
	ListMessages(ctx context.Context, pairKey string) ([]*ChatMessage, error)

	// ListPartners returns profiles of everyone userID shares a
	// conversation with, counters computed relative to userID.
	ListPartners(ctx context.Context, userID int64) ([]*Profile, error)
}

// PostStore handles post persistence.
type PostStore interface {
	// CreatePost creates a new post.
	CreatePost(ctx context.Context, userID int64, description, image string, tags []string) (*Post, error)

	// GetPostByID retrieves a post with likes and comments populated.
	GetPostByID(ctx context.Context, id int64) (*Post, error)

	// ListPostsByUser retrieves a user's posts, newest first.
	ListPostsByUser(ctx context.Context, userID int64) ([]*Post, error)

	// UpdatePost applies the non-nil fields of upd to the post.
	UpdatePost(ctx context.Context, id int64, upd PostUpdate) error

	// DeletePost removes a post with its likes and comments.
	DeletePost(ctx context.Context, id int64) error

	// ToggleLike adds userID to the post's likes, or removes it when
	// already present. Returns true when the post ends up liked.
	ToggleLike(ctx context.Context, postID, userID int64) (bool, error)

	// AddComment appends a comment to a post.
	AddComment(ctx context.Context, postID, userID int64, text string) (*Comment, error)

	// Feed returns the user's own posts plus posts of followed users,
	// newest first, capped at limit.
	Feed(ctx context.Context, userID int64, limit int) ([]*Post, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	PresenceStore
	FollowStore
	ConversationStore
	PostStore

	// Migrate creates the schema when missing.
	Migrate(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
