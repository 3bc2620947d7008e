package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomRepo "github.com/watchroom/server/internal/repository/room"
)

type PlaybackAction string

const (
	ActionPlay  PlaybackAction = "play"
	ActionPause PlaybackAction = "pause"
	ActionSeek  PlaybackAction = "seek"
)

type ApplyIntentParams struct {
	RoomId           string
	SenderId         string
	Action           PlaybackAction
	Position         float64
	ExpectedRevision int64
}

// ApplyIntent resolves a proposed playback change with last-writer-wins
// optimistic concurrency. The intent is accepted only when
// ExpectedRevision matches the authoritative revision; on acceptance the
// new state is stamped with revision+1 and broadcast to every member,
// sender included; the sender must apply the broadcast, not its local
// guess. A stale intent returns ErrStaleRevision together with the
// current state so the sender can re-converge, and never mutates
// anything.
func (s *service) ApplyIntent(ctx context.Context, params *ApplyIntentParams) (Playback, error) {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	if _, err := s.requireMember(ctx, params.RoomId, params.SenderId); err != nil {
		return Playback{}, err
	}

	current, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, roomRepo.ErrPlaybackNotFound) {
			return Playback{}, ErrRoomNotFound
		}
		return Playback{}, fmt.Errorf("failed to get playback: %w", err)
	}

	if params.ExpectedRevision != current.Revision {
		return toPlayback(current), ErrStaleRevision
	}

	now := nowMilli()

	// Project the position forward to the moment of this transition so
	// late joiners extrapolate from a fresh anchor.
	position := current.Position
	if current.IsPlaying {
		position += float64(now-current.LastChangedAt) / float64(time.Second/time.Millisecond)
	}

	next := current
	switch params.Action {
	case ActionPlay:
		next.IsPlaying = true
		next.Position = position
	case ActionPause:
		next.IsPlaying = false
		next.Position = position
	case ActionSeek:
		if params.Position < 0 {
			return Playback{}, ErrInvalidInput
		}
		next.Position = params.Position
	default:
		return Playback{}, ErrInvalidInput
	}

	next.Revision = current.Revision + 1
	next.LastChangedBy = params.SenderId
	next.LastChangedAt = now

	ok, err := s.roomRepo.CompareAndSetPlayback(ctx, &roomRepo.CompareAndSetPlaybackParams{
		RoomId:           params.RoomId,
		ExpectedRevision: current.Revision,
		Playback:         next,
	})
	if err != nil {
		return Playback{}, fmt.Errorf("failed to set playback: %w", err)
	}
	if !ok {
		// lost a race with another writer outside this process
		current, err = s.roomRepo.GetPlayback(ctx, params.RoomId)
		if err != nil {
			return Playback{}, fmt.Errorf("failed to get playback: %w", err)
		}
		return toPlayback(current), ErrStaleRevision
	}

	s.touchRoom(ctx, params.RoomId)

	playback := toPlayback(next)
	s.broadcast(ctx, params.RoomId, &Event{
		Type:    EventPlaybackChanged,
		Payload: map[string]any{"playback": playback},
	})

	return playback, nil
}
