package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	roomRepo "github.com/watchroom/server/internal/repository/room"
)

type CreateRoomParams struct {
	Name        string
	CreatorId   string
	CreatorName string
}

type CreateRoomResponse struct {
	RoomId   string
	Snapshot RoomSnapshot
}

// CreateRoom allocates a room with the creator as its first member and a
// paused playback state at revision 0.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if params.CreatorId == "" {
		return CreateRoomResponse{}, ErrUnauthenticated
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return CreateRoomResponse{}, ErrInvalidInput
	}

	roomId := s.generator.GenerateRandomString(roomIdLength)
	now := nowMilli()

	if err := s.roomRepo.SetRoom(ctx, &roomRepo.SetRoomParams{
		RoomId:    roomId,
		Name:      name,
		CreatorId: params.CreatorId,
		CreatedAt: now,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	if err := s.roomRepo.AddMember(ctx, &roomRepo.AddMemberParams{
		RoomId:      roomId,
		MemberId:    params.CreatorId,
		DisplayName: params.CreatorName,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to add creator: %w", err)
	}

	if err := s.roomRepo.SetPlayback(ctx, &roomRepo.SetPlaybackParams{
		RoomId: roomId,
		Playback: roomRepo.Playback{
			Revision:      0,
			LastChangedBy: params.CreatorId,
			LastChangedAt: now,
		},
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set playback: %w", err)
	}

	snapshot, err := s.getSnapshot(ctx, roomId)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "room created", "room_id", roomId, "creator_id", params.CreatorId)

	return CreateRoomResponse{
		RoomId:   roomId,
		Snapshot: snapshot,
	}, nil
}

func (s *service) GetRoom(ctx context.Context, roomId string) (RoomSnapshot, error) {
	return s.getSnapshot(ctx, roomId)
}

// ListActiveRooms returns rooms with at least one member, most recently
// active first.
func (s *service) ListActiveRooms(ctx context.Context) ([]RoomInfo, error) {
	roomIds, err := s.roomRepo.GetActiveRoomIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active room ids: %w", err)
	}

	rooms := make([]RoomInfo, 0, len(roomIds))
	for _, roomId := range roomIds {
		room, err := s.roomRepo.GetRoom(ctx, roomId)
		if err != nil {
			// raced with deletion
			if errors.Is(err, roomRepo.ErrRoomNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get room: %w", err)
		}

		memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
		if err != nil {
			return nil, fmt.Errorf("failed to get member ids: %w", err)
		}

		if len(memberIds) == 0 {
			continue
		}

		playback, err := s.roomRepo.GetPlayback(ctx, roomId)
		if err != nil {
			return nil, fmt.Errorf("failed to get playback: %w", err)
		}

		rooms = append(rooms, RoomInfo{
			Id:           roomId,
			Name:         room.Name,
			CreatorId:    room.CreatorId,
			VideoId:      playback.VideoId,
			MembersCount: len(memberIds),
			CreatedAt:    room.CreatedAt,
		})
	}

	return rooms, nil
}

type SetVideoParams struct {
	RoomId   string
	VideoId  string
	SenderId string
}

// SetVideo changes what the room is watching and resets playback to a
// paused state at position zero, so every member re-synchronizes from a
// known origin.
func (s *service) SetVideo(ctx context.Context, params *SetVideoParams) (Playback, error) {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	if _, err := s.requireMember(ctx, params.RoomId, params.SenderId); err != nil {
		return Playback{}, err
	}

	exists, err := s.catalog.VideoExists(ctx, params.VideoId)
	if err != nil {
		return Playback{}, fmt.Errorf("failed to check video: %w", err)
	}
	if !exists {
		return Playback{}, ErrVideoNotFound
	}

	current, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, roomRepo.ErrPlaybackNotFound) {
			return Playback{}, ErrRoomNotFound
		}
		return Playback{}, fmt.Errorf("failed to get playback: %w", err)
	}

	next := roomRepo.Playback{
		VideoId:       params.VideoId,
		Position:      0,
		IsPlaying:     false,
		Revision:      current.Revision + 1,
		LastChangedBy: params.SenderId,
		LastChangedAt: nowMilli(),
	}

	ok, err := s.roomRepo.CompareAndSetPlayback(ctx, &roomRepo.CompareAndSetPlaybackParams{
		RoomId:           params.RoomId,
		ExpectedRevision: current.Revision,
		Playback:         next,
	})
	if err != nil {
		return Playback{}, fmt.Errorf("failed to set playback: %w", err)
	}
	if !ok {
		return Playback{}, ErrStaleRevision
	}

	s.touchRoom(ctx, params.RoomId)

	playback := toPlayback(next)
	s.broadcast(ctx, params.RoomId, &Event{
		Type:    EventVideoChanged,
		Payload: map[string]any{"playback": playback},
	})

	return playback, nil
}
