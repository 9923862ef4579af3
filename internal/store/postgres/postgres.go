package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/monster-anshu/api-social-media/internal/store"
)

// PostgresStore implements store.Store for PostgreSQL via the pgx
// database/sql driver.
type PostgresStore struct {
	db *sql.DB
}

// New creates a new Postgres store from a connection URL.
func New(url string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var userColumnNames = []string{
	"id", "username", "name", "email", "password_hash", "socket_id", "is_online",
	"profile_picture", "cover_picture", "description", "city", "home_town",
	"relationship", "is_admin", "created_at", "updated_at",
}

func userCols(prefix string) string {
	cols := make([]string, len(userColumnNames))
	for i, name := range userColumnNames {
		cols[i] = prefix + name
	}
	return strings.Join(cols, ", ")
}

var userColumns = userCols("")

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var (
		user     store.User
		socketID sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&socketID,
		&user.IsOnline,
		&user.ProfilePicture,
		&user.CoverPicture,
		&user.Description,
		&user.City,
		&user.HomeTown,
		&user.Relationship,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if socketID.Valid {
		user.SocketID = &socketID.String
	}
	return &user, nil
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *PostgresStore) CreateUser(ctx context.Context, username, name, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	if err := s.db.QueryRowContext(ctx, query, username, name, email, passwordHash).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetProfile retrieves a user with social counters relative to viewerID.
func (s *PostgresStore) GetProfile(ctx context.Context, userID, viewerID int64) (*store.Profile, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := store.Profile{User: *user}
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1),
			(SELECT COUNT(*) FROM posts WHERE user_id = $1),
			EXISTS(SELECT 1 FROM follows WHERE follower_id = $2 AND followee_id = $1),
			EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)
	`
	err = s.db.QueryRowContext(ctx, query, userID, viewerID).Scan(
		&profile.FollowerCount,
		&profile.FollowingCount,
		&profile.PostCount,
		&profile.AmIFollowing,
		&profile.IsFollowingMe,
	)
	if err != nil {
		return nil, fmt.Errorf("query profile counters: %w", err)
	}

	return &profile, nil
}

// SearchUsersByName retrieves users whose display name matches.
func (s *PostgresStore) SearchUsersByName(ctx context.Context, name string) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name ILIKE $1 ORDER BY username LIMIT 20`
	return s.listUsers(ctx, query, "%"+name+"%")
}

// UpdateProfile applies the non-nil fields of upd to the user.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID int64, upd store.ProfileUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.ProfilePicture != nil {
		add("profile_picture", *upd.ProfilePicture)
	}
	if upd.CoverPicture != nil {
		add("cover_picture", *upd.CoverPicture)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.HomeTown != nil {
		add("home_town", *upd.HomeTown)
	}
	if upd.Relationship != nil {
		add("relationship", *upd.Relationship)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ==== PresenceStore implementation ====

// SetOnline records the connection handle and flips the online flag.
func (s *PostgresStore) SetOnline(ctx context.Context, userID int64, socketID string) (bool, error) {
	query := `
		UPDATE users
		SET socket_id = $1, is_online = TRUE, updated_at = NOW()
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, socketID, userID)
	if err != nil {
		return false, fmt.Errorf("set online: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetOffline clears presence for whichever user holds socketID.
func (s *PostgresStore) SetOffline(ctx context.Context, socketID string) error {
	query := `
		UPDATE users
		SET socket_id = NULL, is_online = FALSE, updated_at = NOW()
		WHERE socket_id = $1
	`
	if _, err := s.db.ExecContext(ctx, query, socketID); err != nil {
		return fmt.Errorf("set offline: %w", err)
	}
	return nil
}

// GetSocketID returns the current connection handle for a user.
func (s *PostgresStore) GetSocketID(ctx context.Context, userID int64) (*string, error) {
	var socketID sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT socket_id FROM users WHERE id = $1`, userID).Scan(&socketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query socket id: %w", err)
	}
	if !socketID.Valid {
		return nil, nil
	}
	return &socketID.String, nil
}

// ListOnline returns up to limit currently-online users.
func (s *PostgresStore) ListOnline(ctx context.Context, limit int) ([]*store.OnlineUser, error) {
	query := `
		SELECT id, username, COALESCE(socket_id, ''), is_online
		FROM users
		WHERE is_online
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list online: %w", err)
	}
	defer rows.Close()

	online := make([]*store.OnlineUser, 0)
	for rows.Next() {
		var u store.OnlineUser
		if err := rows.Scan(&u.ID, &u.Username, &u.SocketID, &u.IsOnline); err != nil {
			return nil, fmt.Errorf("scan online user: %w", err)
		}
		online = append(online, &u)
	}
	return online, rows.Err()
}

// ==== FollowStore implementation ====

// Follow records followerID following followeeID.
func (s *PostgresStore) Follow(ctx context.Context, followerID, followeeID int64) error {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// Unfollow removes the relationship.
func (s *PostgresStore) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	if _, err := s.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// IsFollowing reports whether followerID follows followeeID.
func (s *PostgresStore) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	if err := s.db.QueryRowContext(ctx, query, followerID, followeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("query follow: %w", err)
	}
	return exists, nil
}

// ListFollowers lists users following userID, name-sorted, paged.
func (s *PostgresStore) ListFollowers(ctx context.Context, userID int64, page, limit int) ([]*store.User, error) {
	query := `
		SELECT ` + userCols("u.") + `
		FROM users u
		JOIN follows f ON f.follower_id = u.id
		WHERE f.followee_id = $1
		ORDER BY u.name
		LIMIT $2 OFFSET $3
	`
	return s.listUsers(ctx, query, userID, limit, pageOffset(page, limit))
}

// ListFollowing lists users userID follows, name-sorted, paged.
func (s *PostgresStore) ListFollowing(ctx context.Context, userID int64, page, limit int) ([]*store.User, error) {
	query := `
		SELECT ` + userCols("u.") + `
		FROM users u
		JOIN follows f ON f.followee_id = u.id
		WHERE f.follower_id = $1
		ORDER BY u.name
		LIMIT $2 OFFSET $3
	`
	return s.listUsers(ctx, query, userID, limit, pageOffset(page, limit))
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

func (s *PostgresStore) listUsers(ctx context.Context, query string, args ...any) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*store.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ==== ConversationStore implementation ====

// AppendMessage appends msg to the pair's conversation, creating it on
// first contact.
func (s *PostgresStore) AppendMessage(ctx context.Context, pairKey string, userA, userB int64, msg *store.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO conversations (pair_key, user_a, user_b)
		VALUES ($1, $2, $3)
		ON CONFLICT (pair_key) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, upsert, pairKey, userA, userB); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	var conversationID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM conversations WHERE pair_key = $1`, pairKey).Scan(&conversationID)
	if err != nil {
		return fmt.Errorf("query conversation: %w", err)
	}

	insert := `
		INSERT INTO messages (id, conversation_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, insert, msg.ID, conversationID, msg.SenderID, msg.Text, msg.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	msg.ConversationID = conversationID
	return nil
}

// ListMessages returns the conversation log ordered by insertion.
func (s *PostgresStore) ListMessages(ctx context.Context, pairKey string) ([]*store.ChatMessage, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.text, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.pair_key = $1
		ORDER BY m.created_at ASC, m.seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, pairKey)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.ChatMessage, 0)
	for rows.Next() {
		var m store.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// ListPartners returns profiles of everyone userID has a conversation with.
func (s *PostgresStore) ListPartners(ctx context.Context, userID int64) ([]*store.Profile, error) {
	query := `
		SELECT DISTINCT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
		FROM conversations
		WHERE user_a = $1 OR user_b = $1
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	partnerIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan partner id: %w", err)
		}
		partnerIDs = append(partnerIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	profiles := make([]*store.Profile, 0, len(partnerIDs))
	for _, id := range partnerIDs {
		profile, err := s.GetProfile(ctx, id, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ==== PostStore implementation ====

const postColumns = `id, user_id, description, image, tags, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*store.Post, error) {
	var (
		post store.Post
		tags string
	)
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Description,
		&post.Image,
		&tags,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &post, nil
}

// CreatePost creates a new post.
func (s *PostgresStore) CreatePost(ctx context.Context, userID int64, description, image string, tags []string) (*store.Post, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query := `
		INSERT INTO posts (user_id, description, image, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	if err := s.db.QueryRowContext(ctx, query, userID, description, image, string(encoded)).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	return s.GetPostByID(ctx, id)
}

// GetPostByID retrieves a post with likes and comments populated.
func (s *PostgresStore) GetPostByID(ctx context.Context, id int64) (*store.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	if err := s.loadPostRelations(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPostsByUser retrieves a user's posts, newest first.
func (s *PostgresStore) ListPostsByUser(ctx context.Context, userID int64) ([]*store.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return s.listPosts(ctx, query, userID)
}

// UpdatePost applies the non-nil fields of upd to the post.
func (s *PostgresStore) UpdatePost(ctx context.Context, id int64, upd store.PostUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if upd.Description != nil {
		args = append(args, *upd.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if upd.Image != nil {
		args = append(args, *upd.Image)
		sets = append(sets, fmt.Sprintf("image = $%d", len(args)))
	}
	if upd.Tags != nil {
		encoded, err := json.Marshal(upd.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		args = append(args, string(encoded))
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePost removes a post with its likes and comments.
func (s *PostgresStore) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// ToggleLike adds or removes userID from the post's likes.
func (s *PostgresStore) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("query post: %w", err)
	}
	if !exists {
		return false, store.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	insert := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insert, postID, userID); err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	return true, nil
}

// AddComment appends a comment to a post.
func (s *PostgresStore) AddComment(ctx context.Context, postID, userID int64, text string) (*store.Comment, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	query := `
		INSERT INTO post_comments (post_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, text, created_at
	`
	var comment store.Comment
	err := s.db.QueryRowContext(ctx, query, postID, userID, text).Scan(
		&comment.ID, &comment.PostID, &comment.UserID, &comment.Text, &comment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// Feed returns own posts plus posts of followed users, newest first.
func (s *PostgresStore) Feed(ctx context.Context, userID int64, limit int) ([]*store.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1
		   OR user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	return s.listPosts(ctx, query, userID, limit)
}

func (s *PostgresStore) listPosts(ctx context.Context, query string, args ...any) ([]*store.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*store.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, post := range posts {
		if err := s.loadPostRelations(ctx, post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *PostgresStore) loadPostRelations(ctx context.Context, post *store.Post) error {
	likeRows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at`, post.ID)
	if err != nil {
		return fmt.Errorf("list likes: %w", err)
	}
	defer likeRows.Close()

	post.Likes = make([]int64, 0)
	for likeRows.Next() {
		var uid int64
		if err := likeRows.Scan(&uid); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		post.Likes = append(post.Likes, uid)
	}
	if err := likeRows.Err(); err != nil {
		return err
	}

	commentRows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, user_id, text, created_at FROM post_comments WHERE post_id = $1 ORDER BY created_at, id`, post.ID)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	defer commentRows.Close()

	post.Comments = make([]store.Comment, 0)
	for commentRows.Next() {
		var c store.Comment
		if err := commentRows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		post.Comments = append(post.Comments, c)
	}
	return commentRows.Err()
}
