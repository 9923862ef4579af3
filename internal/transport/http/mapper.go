package http

import (
	"time"

	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/proto"
)

func outboundFromEvent(event *presence.Event) proto.Outbound {
	switch event.Kind {
	case presence.EventOnlineUsers:
		online := make([]proto.OnlineUser, 0, len(event.Online))
		for _, u := range event.Online {
			online = append(online, proto.OnlineUser{
				UserID:   u.ID,
				Username: u.Username,
				SocketID: u.SocketID,
				IsOnline: u.IsOnline,
			})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOnlineUsers,
			Data:  online,
		}
	case presence.EventChatMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatMessage,
			Data: proto.ChatMessage{
				ID:        event.Message.ID,
				Sender:    event.Message.SenderID,
				Text:      event.Message.Text,
				CreatedAt: event.Message.CreatedAt.UTC().Format(time.RFC3339),
			},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
