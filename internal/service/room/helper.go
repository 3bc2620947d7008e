package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	roomRepo "github.com/watchroom/server/internal/repository/room"
)

// lockRoom serializes state transitions for one room. The returned func
// releases the lock; it must never be held across a network write.
func (s *service) lockRoom(roomId string) func() {
	v, _ := s.roomLocks.LoadOrStore(roomId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}

func (s *service) touchRoom(ctx context.Context, roomId string) {
	if err := s.roomRepo.TouchRoom(ctx, roomId, nowMilli()); err != nil {
		s.logger.WarnContext(ctx, "failed to touch room", "error", err, "room_id", roomId)
	}
}

// requireMember resolves the sender within the room, mapping repository
// errors to the caller-facing kinds.
func (s *service) requireMember(ctx context.Context, roomId, memberId string) (roomRepo.Member, error) {
	if memberId == "" {
		return roomRepo.Member{}, ErrUnauthenticated
	}

	member, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberParams{
		RoomId:   roomId,
		MemberId: memberId,
	})
	if err != nil {
		switch {
		case errors.Is(err, roomRepo.ErrRoomNotFound):
			return roomRepo.Member{}, ErrRoomNotFound
		case errors.Is(err, roomRepo.ErrMemberNotFound):
			// a missing member in a missing room is NotFound, not Forbidden
			if _, roomErr := s.roomRepo.GetRoom(ctx, roomId); errors.Is(roomErr, roomRepo.ErrRoomNotFound) {
				return roomRepo.Member{}, ErrRoomNotFound
			}
			return roomRepo.Member{}, ErrPermissionDenied
		default:
			return roomRepo.Member{}, fmt.Errorf("failed to get member: %w", err)
		}
	}

	return member, nil
}

func (s *service) getMembers(ctx context.Context, roomId string) ([]Member, error) {
	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	members := make([]Member, 0, len(memberIds))
	for _, memberId := range memberIds {
		member, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberParams{
			RoomId:   roomId,
			MemberId: memberId,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get member: %w", err)
		}

		members = append(members, Member{
			Id:          memberId,
			DisplayName: member.DisplayName,
		})
	}

	return members, nil
}

// getSnapshot builds an immutable copy of the room's full state. Must be
// called with the room lock held when used as a join snapshot.
func (s *service) getSnapshot(ctx context.Context, roomId string) (RoomSnapshot, error) {
	room, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return RoomSnapshot{}, ErrRoomNotFound
		}
		return RoomSnapshot{}, fmt.Errorf("failed to get room: %w", err)
	}

	members, err := s.getMembers(ctx, roomId)
	if err != nil {
		return RoomSnapshot{}, err
	}

	playback, err := s.roomRepo.GetPlayback(ctx, roomId)
	if err != nil {
		return RoomSnapshot{}, fmt.Errorf("failed to get playback: %w", err)
	}

	messages, err := s.roomRepo.GetMessages(ctx, &roomRepo.GetMessagesParams{RoomId: roomId})
	if err != nil {
		return RoomSnapshot{}, fmt.Errorf("failed to get messages: %w", err)
	}

	return RoomSnapshot{
		RoomId:    roomId,
		Name:      room.Name,
		CreatorId: room.CreatorId,
		Members:   members,
		Playback:  toPlayback(playback),
		Messages:  toMessages(messages),
	}, nil
}

func toPlayback(p roomRepo.Playback) Playback {
	return Playback{
		VideoId:       p.VideoId,
		Position:      p.Position,
		IsPlaying:     p.IsPlaying,
		Revision:      p.Revision,
		LastChangedBy: p.LastChangedBy,
		LastChangedAt: p.LastChangedAt,
	}
}

func toMessage(m roomRepo.Message) Message {
	return Message{
		Id:         m.Id,
		AuthorId:   m.AuthorId,
		AuthorName: m.AuthorName,
		Text:       m.Text,
		SentAt:     m.SentAt,
		Sequence:   m.Sequence,
	}
}

func toMessages(msgs []roomRepo.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out
}
