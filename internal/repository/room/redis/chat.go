package redis

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getChatKey(roomId string) string {
	return "room:" + roomId + ":chat"
}

func (r repo) getChatSeqKey(roomId string) string {
	return "room:" + roomId + ":chat:seq"
}

// AppendMessage assigns the next sequence number for the room and stores
// the message. Allocation, storage and trimming run in one script, so an
// accepted append never leaves a hole in the sequence and the counter
// lives outside the log ZSET where trimming cannot rewind it.
func (r repo) AppendMessage(ctx context.Context, params *room.AppendMessageParams) (int64, error) {
	r.logger.DebugContext(ctx, "called", "params", params)

	data, err := json.Marshal(params.Message)
	if err != nil {
		return 0, err
	}

	seq, err := r.rc.EvalSha(ctx, r.chatAppendScript,
		[]string{r.getChatKey(params.RoomId), r.getChatSeqKey(params.RoomId)},
		data, -r.chatHistoryLimit-1,
	).Int64()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, err
	}

	return seq, nil
}

// GetMessages returns messages with sequence strictly greater than
// SinceSequence, in sequence order.
func (r repo) GetMessages(ctx context.Context, params *room.GetMessagesParams) ([]room.Message, error) {
	res, err := r.rc.ZRangeByScore(ctx, r.getChatKey(params.RoomId), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(params.SinceSequence, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	messages := make([]room.Message, 0, len(res))
	for _, raw := range res {
		var msg room.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, nil
}
