package app

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogRedis "github.com/watchroom/server/internal/repository/catalog/redis"
	roomRedis "github.com/watchroom/server/internal/repository/room/redis"
	subscriberInmemory "github.com/watchroom/server/internal/repository/subscriber/inmemory"
	"github.com/watchroom/server/internal/service/catalog"
	"github.com/watchroom/server/internal/service/identity"
	"github.com/watchroom/server/internal/service/room"
)

func TestWatchTogetherFlow(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	roomRepo := roomRedis.NewRepo(rc, slog.Default(), 100)
	subscriberRepo := subscriberInmemory.NewRepo()
	catalogService := catalog.NewService(catalogRedis.NewRepo(rc))
	identityService := identity.NewService("test-secret")

	ctx := context.Background()
	require.NoError(t, catalogService.Seed(ctx))

	roomService := room.NewService(roomRepo, subscriberRepo, catalogService, slog.Default(), &room.Config{
		MembersLimit:    9,
		RoomGracePeriod: 45 * time.Second,
	})

	// two participants log in
	aliceLogin, err := identityService.Login("alice")
	require.NoError(t, err)
	bobLogin, err := identityService.Login("bob")
	require.NoError(t, err)

	alice, err := identityService.Parse(aliceLogin.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.DisplayName)
	bob, err := identityService.Parse(bobLogin.Token)
	require.NoError(t, err)

	// alice creates the room
	createResp, err := roomService.CreateRoom(ctx, &room.CreateRoomParams{
		Name:        "Movie Night",
		CreatorId:   alice.Id,
		CreatorName: alice.DisplayName,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, createResp.RoomId)
	t.Log("room created")

	// alice attaches her connection; the idempotent join subscribes her
	aliceResp, err := roomService.Join(ctx, &room.JoinRoomParams{
		RoomId:      createResp.RoomId,
		MemberId:    alice.Id,
		DisplayName: alice.DisplayName,
		Conn:        &websocket.Conn{},
	})
	require.NoError(t, err)
	assert.False(t, aliceResp.Joined)
	require.NotNil(t, aliceResp.Subscriber)

	// bob joins
	joinResp, err := roomService.Join(ctx, &room.JoinRoomParams{
		RoomId:      createResp.RoomId,
		MemberId:    bob.Id,
		DisplayName: bob.DisplayName,
	})
	require.NoError(t, err)
	assert.Len(t, joinResp.Snapshot.Members, 2)
	t.Log("member joined")

	// alice picks a seeded video
	videos, err := catalogService.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, videos)

	playback, err := roomService.SetVideo(ctx, &room.SetVideoParams{
		RoomId:   createResp.RoomId,
		VideoId:  videos[0].Id,
		SenderId: alice.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, videos[0].Id, playback.VideoId)

	// alice starts playback; bob's stale intent is refused
	playback, err = roomService.ApplyIntent(ctx, &room.ApplyIntentParams{
		RoomId:           createResp.RoomId,
		SenderId:         alice.Id,
		Action:           room.ActionPlay,
		ExpectedRevision: playback.Revision,
	})
	require.NoError(t, err)
	assert.True(t, playback.IsPlaying)

	_, err = roomService.ApplyIntent(ctx, &room.ApplyIntentParams{
		RoomId:           createResp.RoomId,
		SenderId:         bob.Id,
		Action:           room.ActionPause,
		ExpectedRevision: playback.Revision - 1,
	})
	assert.ErrorIs(t, err, room.ErrStaleRevision)

	// chat
	message, err := roomService.AppendChat(ctx, &room.AppendChatParams{
		RoomId:   createResp.RoomId,
		SenderId: bob.Id,
		Text:     "great pick",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), message.Sequence)

	// bob leaves, the room stays listed with alice in it
	require.NoError(t, roomService.Leave(ctx, &room.LeaveRoomParams{RoomId: createResp.RoomId, MemberId: bob.Id}))

	rooms, err := roomService.ListActiveRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Movie Night", rooms[0].Name)

	t.Log(rc.Keys(ctx, "*").Val())
}

func TestAppConfigValidate(t *testing.T) {
	valid := AppConfig{
		Secret:           "secret",
		Host:             "0.0.0.0",
		Port:             8080,
		LogLevel:         "INFO",
		Storage:          StorageMemory,
		MembersLimit:     9,
		ChatHistoryLimit: 100,
		RoomGracePeriod:  45 * time.Second,
	}
	require.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.Secret = ""
	assert.Error(t, noSecret.Validate())

	badStorage := valid
	badStorage.Storage = "postgres"
	assert.Error(t, badStorage.Validate())

	badGrace := valid
	badGrace.RoomGracePeriod = 0
	assert.Error(t, badGrace.Validate())
}
