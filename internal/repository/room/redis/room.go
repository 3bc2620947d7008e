package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/watchroom/server/internal/repository/room"
)

const (
	activityKey = "rooms:activity"
	emptyKey    = "rooms:empty"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	pipe.HSet(ctx, r.getRoomKey(params.RoomId), room.Room{
		Name:      params.Name,
		CreatorId: params.CreatorId,
		CreatedAt: params.CreatedAt,
	})
	pipe.ZAdd(ctx, activityKey, redis.Z{Score: float64(params.CreatedAt), Member: params.RoomId})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	res, err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	if len(res) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	createdAt, _ := strconv.ParseInt(res["created_at"], 10, 64)

	return room.Room{
		Name:      res["name"],
		CreatorId: res["creator_id"],
		CreatedAt: createdAt,
	}, nil
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)

	memberIds, err := r.GetMemberIds(ctx, roomId)
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()

	for _, memberId := range memberIds {
		pipe.Del(ctx, r.getMemberKey(roomId, memberId))
	}
	pipe.Del(ctx,
		r.getRoomKey(roomId),
		r.getMemberListKey(roomId),
		r.getPlaybackKey(roomId),
		r.getChatKey(roomId),
		r.getChatSeqKey(roomId),
	)
	pipe.ZRem(ctx, activityKey, roomId)
	pipe.ZRem(ctx, emptyKey, roomId)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) TouchRoom(ctx context.Context, roomId string, at int64) error {
	return r.rc.ZAdd(ctx, activityKey, redis.Z{Score: float64(at), Member: roomId}).Err()
}

// GetActiveRoomIds returns all known room ids, most recently active first.
func (r repo) GetActiveRoomIds(ctx context.Context) ([]string, error) {
	return r.rc.ZRevRange(ctx, activityKey, 0, -1).Result()
}

func (r repo) MarkRoomEmpty(ctx context.Context, roomId string, at int64) error {
	return r.rc.ZAdd(ctx, emptyKey, redis.Z{Score: float64(at), Member: roomId}).Err()
}

func (r repo) ClearRoomEmpty(ctx context.Context, roomId string) error {
	return r.rc.ZRem(ctx, emptyKey, roomId).Err()
}

// GetEmptyRoomIds returns ids of rooms whose member set has been empty
// since before the given unix-milli timestamp.
func (r repo) GetEmptyRoomIds(ctx context.Context, before int64) ([]string, error) {
	return r.rc.ZRangeByScore(ctx, emptyKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(before, 10),
	}).Result()
}
