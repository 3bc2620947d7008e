package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/room"
)

func TestPlaybackCompareAndSet(t *testing.T) {
	r := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{RoomId: "r1", Name: "movie night", CreatorId: "u1"}))
	require.NoError(t, r.SetPlayback(ctx, &room.SetPlaybackParams{
		RoomId:   "r1",
		Playback: room.Playback{VideoId: "v1", Revision: 0},
	}))

	ok, err := r.CompareAndSetPlayback(ctx, &room.CompareAndSetPlaybackParams{
		RoomId:           "r1",
		ExpectedRevision: 0,
		Playback:         room.Playback{VideoId: "v1", IsPlaying: true, Revision: 1},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.CompareAndSetPlayback(ctx, &room.CompareAndSetPlaybackParams{
		RoomId:           "r1",
		ExpectedRevision: 0,
		Playback:         room.Playback{VideoId: "v1", Revision: 1},
	})
	require.NoError(t, err)
	assert.False(t, ok)

	playback, err := r.GetPlayback(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), playback.Revision)
	assert.True(t, playback.IsPlaying)
}

func TestChatTrimKeepsSequence(t *testing.T) {
	r := NewRepo(2)
	ctx := context.Background()

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{RoomId: "r1", Name: "movie night", CreatorId: "u1"}))

	for i := 0; i < 4; i++ {
		seq, err := r.AppendMessage(ctx, &room.AppendMessageParams{
			RoomId:  "r1",
			Message: room.Message{AuthorId: "u1", Text: "hey"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	messages, err := r.GetMessages(ctx, &room.GetMessagesParams{RoomId: "r1"})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(3), messages[0].Sequence)
	assert.Equal(t, int64(4), messages[1].Sequence)
}

func TestActiveRoomOrdering(t *testing.T) {
	r := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{RoomId: "r1", CreatedAt: 100}))
	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{RoomId: "r2", CreatedAt: 200}))
	require.NoError(t, r.TouchRoom(ctx, "r1", 300))

	ids, err := r.GetActiveRoomIds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}
