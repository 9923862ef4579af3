package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/store"
)

// Domain errors for the chat delivery path.
var (
	ErrEmptyMessage      = errors.New("message text is required")
	ErrSelfMessage       = errors.New("cannot send message to self")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrStoreUnavailable  = errors.New("message store unavailable")
)

// PairKey returns the canonical conversation key for two users. The
// pair is sorted so both directions derive the same key.
func PairKey(a, b int64) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}

// Service implements one-to-one message delivery: push to the
// recipient's live connection when online, always append to the durable
// conversation log. The append is the source of truth; the push is a
// latency optimization.
type Service struct {
	store store.Store
	hub   *presence.Hub
	log   *zerolog.Logger
}

// NewService creates a chat service.
func NewService(st store.Store, hub *presence.Hub, logger *zerolog.Logger) *Service {
	return &Service{
		store: st,
		hub:   hub,
		log:   logger,
	}
}

// Send delivers text from senderID to recipientID. Push failures are
// swallowed; a failed append is surfaced as ErrStoreUnavailable since a
// silently lost message would break the durability contract. A nil
// error acknowledges the append, not receipt by the recipient.
func (s *Service) Send(ctx context.Context, senderID, recipientID int64, text string) (*store.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}

	if _, err := s.store.GetUserByID(ctx, recipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		s.log.Error().Err(err).Int64("recipient_id", recipientID).Msg("recipient lookup failed")
		return nil, ErrStoreUnavailable
	}

	msg := &store.ChatMessage{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if delivered := s.hub.Deliver(ctx, recipientID, msg); !delivered {
		s.log.Debug().Int64("recipient_id", recipientID).Msg("recipient offline, message persisted only")
	}

	if err := s.store.AppendMessage(ctx, PairKey(senderID, recipientID), min64(senderID, recipientID), max64(senderID, recipientID), msg); err != nil {
		s.log.Error().Err(err).
			Int64("sender_id", senderID).
			Int64("recipient_id", recipientID).
			Msg("message append failed")
		return nil, ErrStoreUnavailable
	}

	return msg, nil
}

// History returns the conversation between userID and otherID ordered
// by the persisted timestamp, oldest first. newestFirst reverses the
// order for presentation.
func (s *Service) History(ctx context.Context, userID, otherID int64, newestFirst bool) ([]*store.ChatMessage, error) {
	messages, err := s.store.ListMessages(ctx, PairKey(userID, otherID))
	if err != nil {
		s.log.Error().Err(err).
			Int64("user_id", userID).
			Int64("other_id", otherID).
			Msg("list messages failed")
		return nil, ErrStoreUnavailable
	}

	if newestFirst {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}

// Partners returns profiles of everyone userID shares a conversation
// with, counters computed relative to userID.
func (s *Service) Partners(ctx context.Context, userID int64) ([]*store.Profile, error) {
	profiles, err := s.store.ListPartners(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("list partners failed")
		return nil, ErrStoreUnavailable
	}
	return profiles, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a < b {
		return b
	}
	return a
}
