package room

import (
	"context"
	"encoding/json"
)

const (
	EventMemberJoined    = "MEMBER_JOINED"
	EventMemberLeft      = "MEMBER_LEFT"
	EventPlaybackChanged = "PLAYBACK_CHANGED"
	EventVideoChanged    = "VIDEO_CHANGED"
	EventChatAppended    = "CHAT_APPENDED"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// broadcast fans an event out to every current subscriber of the room.
// It is called inside the room's critical section, so each subscriber
// observes events in the room's mutation order. Enqueueing never blocks;
// a subscriber that cannot keep up is logged and skipped (the gateway
// owns disconnecting it).
func (s *service) broadcast(ctx context.Context, roomId string, event *Event) {
	s.broadcastExcept(ctx, roomId, "", event)
}

func (s *service) broadcastExcept(ctx context.Context, roomId, exceptMemberId string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal event", "error", err, "type", event.Type)
		return
	}

	for _, sub := range s.subRepo.GetByRoomId(roomId) {
		if sub.MemberId == exceptMemberId {
			continue
		}

		if !sub.Enqueue(data) {
			s.logger.WarnContext(ctx, "subscriber queue full, event dropped",
				"member_id", sub.MemberId,
				"room_id", roomId,
				"type", event.Type,
			)
		}
	}
}
