package redis

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/room"
)

func newTestRepo(t *testing.T, chatHistoryLimit int) *repo {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, slog.Default(), chatHistoryLimit)
}

func TestCompareAndSetPlayback(t *testing.T) {
	r := newTestRepo(t, 100)
	ctx := context.Background()

	require.NoError(t, r.SetPlayback(ctx, &room.SetPlaybackParams{
		RoomId: "r1",
		Playback: room.Playback{
			VideoId:       "v1",
			Position:      0,
			IsPlaying:     false,
			Revision:      0,
			LastChangedBy: "u1",
			LastChangedAt: 1000,
		},
	}))

	ok, err := r.CompareAndSetPlayback(ctx, &room.CompareAndSetPlaybackParams{
		RoomId:           "r1",
		ExpectedRevision: 0,
		Playback: room.Playback{
			VideoId:       "v1",
			Position:      12.5,
			IsPlaying:     true,
			Revision:      1,
			LastChangedBy: "u2",
			LastChangedAt: 2000,
		},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	playback, err := r.GetPlayback(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), playback.Revision)
	assert.True(t, playback.IsPlaying)
	assert.Equal(t, 12.5, playback.Position)
	assert.Equal(t, "u2", playback.LastChangedBy)

	// stale expected revision must not mutate
	ok, err = r.CompareAndSetPlayback(ctx, &room.CompareAndSetPlaybackParams{
		RoomId:           "r1",
		ExpectedRevision: 0,
		Playback: room.Playback{
			VideoId:  "v1",
			Revision: 1,
		},
	})
	require.NoError(t, err)
	assert.False(t, ok)

	playback, err = r.GetPlayback(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), playback.Revision)
	assert.True(t, playback.IsPlaying)
}

func TestMemberJoinOrder(t *testing.T) {
	r := newTestRepo(t, 100)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, r.AddMember(ctx, &room.AddMemberParams{
			RoomId:      "r1",
			MemberId:    id,
			DisplayName: "name-" + id,
		}))
	}

	ids, err := r.GetMemberIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids)

	require.NoError(t, r.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "r1", MemberId: "u2"}))

	ids, err = r.GetMemberIds(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, ids)

	_, err = r.GetMember(ctx, &room.GetMemberParams{RoomId: "r1", MemberId: "u2"})
	assert.ErrorIs(t, err, room.ErrMemberNotFound)
}

func TestChatSequenceSurvivesTrim(t *testing.T) {
	r := newTestRepo(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seq, err := r.AppendMessage(ctx, &room.AppendMessageParams{
			RoomId:  "r1",
			Message: room.Message{Id: "m", AuthorId: "u1", Text: "hello"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	messages, err := r.GetMessages(ctx, &room.GetMessagesParams{RoomId: "r1"})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(4), messages[0].Sequence)
	assert.Equal(t, int64(5), messages[1].Sequence)
}

func TestChatAppendKeepsSequencesDense(t *testing.T) {
	r := newTestRepo(t, 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seq, err := r.AppendMessage(ctx, &room.AppendMessageParams{
			RoomId:  "r1",
			Message: room.Message{Id: "m", AuthorId: "u1", AuthorName: "alice", Text: "hello", SentAt: 1000},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	// the counter only advances together with a stored message, so it
	// always equals the highest sequence handed out
	counter, err := r.rc.Get(ctx, r.getChatSeqKey("r1")).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), counter)

	messages, err := r.GetMessages(ctx, &room.GetMessagesParams{RoomId: "r1"})
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, msg := range messages {
		assert.Equal(t, int64(i+1), msg.Sequence)
		assert.Equal(t, "alice", msg.AuthorName)
		assert.Equal(t, int64(1000), msg.SentAt)
	}
}

func TestEmptyRoomIndex(t *testing.T) {
	r := newTestRepo(t, 100)
	ctx := context.Background()

	require.NoError(t, r.MarkRoomEmpty(ctx, "r1", 1000))
	require.NoError(t, r.MarkRoomEmpty(ctx, "r2", 5000))

	ids, err := r.GetEmptyRoomIds(ctx, 2000)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)

	require.NoError(t, r.ClearRoomEmpty(ctx, "r1"))

	ids, err = r.GetEmptyRoomIds(ctx, 10000)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, ids)
}
