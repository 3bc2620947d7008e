package inmemory

import (
	"context"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/watchroom/server/internal/repository/room"
)

type roomState struct {
	room        room.Room
	members     map[string]room.Member
	memberOrder []string
	playback    room.Playback
	hasPlayback bool
	messages    []room.Message
	seq         int64
	activity    int64
}

// repo keeps all room state in process memory. Mutations are guarded by a
// single lock; callers serialize per room above this layer.
type repo struct {
	rooms            map[string]*roomState
	empty            map[string]int64
	chatHistoryLimit int
	mu               sync.RWMutex
}

func NewRepo(chatHistoryLimit int) *repo {
	return &repo{
		rooms:            make(map[string]*roomState),
		empty:            make(map[string]int64),
		chatHistoryLimit: chatHistoryLimit,
	}
}

func (r *repo) SetRoom(_ context.Context, params *room.SetRoomParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[params.RoomId] = &roomState{
		room: room.Room{
			Name:      params.Name,
			CreatorId: params.CreatorId,
			CreatedAt: params.CreatedAt,
		},
		members:  make(map[string]room.Member),
		activity: params.CreatedAt,
	}

	return nil
}

func (r *repo) GetRoom(_ context.Context, roomId string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}

	return state.room, nil
}

func (r *repo) RemoveRoom(_ context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomId)
	delete(r.empty, roomId)

	return nil
}

func (r *repo) TouchRoom(_ context.Context, roomId string, at int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.rooms[roomId]; ok {
		state.activity = at
	}

	return nil
}

func (r *repo) GetActiveRoomIds(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.rooms)
	slices.SortFunc(ids, func(a, b string) int {
		return int(r.rooms[b].activity - r.rooms[a].activity)
	})

	return ids, nil
}

func (r *repo) MarkRoomEmpty(_ context.Context, roomId string, at int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.empty[roomId] = at

	return nil
}

func (r *repo) ClearRoomEmpty(_ context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.empty, roomId)

	return nil
}

func (r *repo) GetEmptyRoomIds(_ context.Context, before int64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.empty))
	for roomId, at := range r.empty {
		if at <= before {
			ids = append(ids, roomId)
		}
	}
	slices.Sort(ids)

	return ids, nil
}

func (r *repo) AddMember(_ context.Context, params *room.AddMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	if _, exists := state.members[params.MemberId]; !exists {
		state.memberOrder = append(state.memberOrder, params.MemberId)
	}
	state.members[params.MemberId] = room.Member{DisplayName: params.DisplayName}

	return nil
}

func (r *repo) RemoveMember(_ context.Context, params *room.RemoveMemberParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	delete(state.members, params.MemberId)
	state.memberOrder = slices.DeleteFunc(state.memberOrder, func(id string) bool {
		return id == params.MemberId
	})

	return nil
}

func (r *repo) GetMember(_ context.Context, params *room.GetMemberParams) (room.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.Member{}, room.ErrRoomNotFound
	}

	member, ok := state.members[params.MemberId]
	if !ok {
		return room.Member{}, room.ErrMemberNotFound
	}

	return member, nil
}

func (r *repo) GetMemberIds(_ context.Context, roomId string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return nil, nil
	}

	return slices.Clone(state.memberOrder), nil
}

func (r *repo) SetPlayback(_ context.Context, params *room.SetPlaybackParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	state.playback = params.Playback
	state.hasPlayback = true

	return nil
}

func (r *repo) GetPlayback(_ context.Context, roomId string) (room.Playback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok || !state.hasPlayback {
		return room.Playback{}, room.ErrPlaybackNotFound
	}

	return state.playback, nil
}

func (r *repo) CompareAndSetPlayback(_ context.Context, params *room.CompareAndSetPlaybackParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok || !state.hasPlayback {
		return false, room.ErrPlaybackNotFound
	}

	if state.playback.Revision != params.ExpectedRevision {
		return false, nil
	}

	state.playback = params.Playback

	return true, nil
}

func (r *repo) AppendMessage(_ context.Context, params *room.AppendMessageParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return 0, room.ErrRoomNotFound
	}

	state.seq++
	msg := params.Message
	msg.Sequence = state.seq

	state.messages = append(state.messages, msg)
	if len(state.messages) > r.chatHistoryLimit {
		state.messages = state.messages[len(state.messages)-r.chatHistoryLimit:]
	}

	return msg.Sequence, nil
}

func (r *repo) GetMessages(_ context.Context, params *room.GetMessagesParams) ([]room.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return nil, nil
	}

	messages := make([]room.Message, 0, len(state.messages))
	for _, msg := range state.messages {
		if msg.Sequence > params.SinceSequence {
			messages = append(messages, msg)
		}
	}

	return messages, nil
}
