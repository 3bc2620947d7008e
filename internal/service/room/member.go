package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	roomRepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/subscriber"
)

type JoinRoomParams struct {
	RoomId      string
	MemberId    string
	DisplayName string
	// Conn, when set, is registered for the room's event stream in the
	// same critical section that establishes membership, so only members
	// receive broadcasts and no event falls between snapshot and stream.
	Conn *websocket.Conn
}

type JoinRoomResponse struct {
	Snapshot RoomSnapshot
	// Subscriber is nil when no Conn was supplied. Its queue must be
	// drained by the caller.
	Subscriber *subscriber.Subscriber
	// Joined is false when the member was already present and the call
	// had no membership side effects.
	Joined bool
}

// Join adds the participant to the room. Idempotent: re-joining returns
// the current snapshot without side effects. Existing members see the
// MEMBER_JOINED event before the joiner receives the snapshot, so the
// snapshot is always a superset of what they were told.
func (s *service) Join(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if params.MemberId == "" {
		return JoinRoomResponse{}, ErrUnauthenticated
	}

	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	if _, err := s.roomRepo.GetRoom(ctx, params.RoomId); err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}
		return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	_, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberParams{
		RoomId:   params.RoomId,
		MemberId: params.MemberId,
	})
	if err == nil {
		sub, err := s.subscribeLocked(params)
		if err != nil {
			return JoinRoomResponse{}, err
		}

		snapshot, err := s.getSnapshot(ctx, params.RoomId)
		if err != nil {
			return JoinRoomResponse{}, err
		}

		return JoinRoomResponse{Snapshot: snapshot, Subscriber: sub, Joined: false}, nil
	}
	if !errors.Is(err, roomRepo.ErrMemberNotFound) {
		return JoinRoomResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get member ids: %w", err)
	}
	if len(memberIds) >= s.membersLimit {
		return JoinRoomResponse{}, ErrRoomFull
	}

	if err := s.roomRepo.AddMember(ctx, &roomRepo.AddMemberParams{
		RoomId:      params.RoomId,
		MemberId:    params.MemberId,
		DisplayName: params.DisplayName,
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to add member: %w", err)
	}

	sub, err := s.subscribeLocked(params)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if err := s.roomRepo.ClearRoomEmpty(ctx, params.RoomId); err != nil {
		s.logger.WarnContext(ctx, "failed to clear empty mark", "error", err, "room_id", params.RoomId)
	}
	s.touchRoom(ctx, params.RoomId)

	members, err := s.getMembers(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	s.broadcastExcept(ctx, params.RoomId, params.MemberId, &Event{
		Type: EventMemberJoined,
		Payload: map[string]any{
			"member": Member{
				Id:          params.MemberId,
				DisplayName: params.DisplayName,
			},
			"members": members,
		},
	})

	snapshot, err := s.getSnapshot(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "member joined", "room_id", params.RoomId, "member_id", params.MemberId)

	return JoinRoomResponse{Snapshot: snapshot, Subscriber: sub, Joined: true}, nil
}

// subscribeLocked registers the connection for the room's event stream.
// Must be called with the room lock held so membership and subscription
// appear atomic to concurrent broadcasts.
func (s *service) subscribeLocked(params *JoinRoomParams) (*subscriber.Subscriber, error) {
	if params.Conn == nil {
		return nil, nil
	}

	sub, err := s.subRepo.Add(params.Conn, params.MemberId, params.RoomId)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return sub, nil
}

type LeaveRoomParams struct {
	RoomId   string
	MemberId string
}

// Leave removes the participant from the room. Leaving a room one is not
// in, or a room that no longer exists, is a no-op. The room itself is not
// deleted here even when the last member leaves; the sweeper reclaims it
// after the grace period so a page reload can rejoin.
func (s *service) Leave(ctx context.Context, params *LeaveRoomParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	member, err := s.roomRepo.GetMember(ctx, &roomRepo.GetMemberParams{
		RoomId:   params.RoomId,
		MemberId: params.MemberId,
	})
	if err != nil {
		if errors.Is(err, roomRepo.ErrMemberNotFound) || errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get member: %w", err)
	}

	if err := s.roomRepo.RemoveMember(ctx, &roomRepo.RemoveMemberParams{
		RoomId:   params.RoomId,
		MemberId: params.MemberId,
	}); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.touchRoom(ctx, params.RoomId)

	members, err := s.getMembers(ctx, params.RoomId)
	if err != nil {
		return err
	}

	s.broadcast(ctx, params.RoomId, &Event{
		Type: EventMemberLeft,
		Payload: map[string]any{
			"member": Member{
				Id:          params.MemberId,
				DisplayName: member.DisplayName,
			},
			"members": members,
		},
	})

	if len(members) == 0 {
		if err := s.roomRepo.MarkRoomEmpty(ctx, params.RoomId, nowMilli()); err != nil {
			s.logger.WarnContext(ctx, "failed to mark room empty", "error", err, "room_id", params.RoomId)
		}
	}

	s.logger.InfoContext(ctx, "member left", "room_id", params.RoomId, "member_id", params.MemberId)

	return nil
}

// UnsubscribeByConn drops the subscription for a closed connection and
// returns it so the caller can tell which member went away.
func (s *service) UnsubscribeByConn(conn *websocket.Conn) (*subscriber.Subscriber, error) {
	return s.subRepo.RemoveByConn(conn)
}
