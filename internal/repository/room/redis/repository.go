package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc               *redis.Client
	logger           *slog.Logger
	chatHistoryLimit int

	joinScoreScript   string
	playbackCasScript string
	chatAppendScript  string
}

func NewRepo(rc *redis.Client, logger *slog.Logger, chatHistoryLimit int) *repo {
	return &repo{
		rc:               rc,
		logger:           logger,
		chatHistoryLimit: chatHistoryLimit,
		joinScoreScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
		playbackCasScript: rc.ScriptLoad(context.Background(), `
			local revision = redis.call('HGET', KEYS[1], 'revision')
			if revision == false or tonumber(revision) ~= tonumber(ARGV[1]) then
				return 0
			end
			redis.call('HSET', KEYS[1],
				'video_id', ARGV[2],
				'position', ARGV[3],
				'is_playing', ARGV[4],
				'revision', tonumber(ARGV[1]) + 1,
				'last_changed_by', ARGV[5],
				'last_changed_at', ARGV[6])
			return 1
		`).Val(),
		chatAppendScript: rc.ScriptLoad(context.Background(), `
			local seq = redis.call('INCR', KEYS[2])
			local msg = cjson.decode(ARGV[1])
			msg['sequence'] = seq
			redis.call('ZADD', KEYS[1], seq, cjson.encode(msg))
			redis.call('ZREMRANGEBYRANK', KEYS[1], 0, tonumber(ARGV[2]))
			return seq
		`).Val(),
	}
}

// addWithIncrement adds value to the ZSET at key with a score one above
// the current maximum, preserving insertion order.
func (r repo) addWithIncrement(ctx context.Context, c redis.Scripter, key string, value interface{}) {
	c.EvalSha(ctx, r.joinScoreScript, []string{key}, value)
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func (r repo) boolToField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
