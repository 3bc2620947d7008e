package redis

import (
	"context"
	"strconv"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getPlaybackKey(roomId string) string {
	return "room:" + roomId + ":playback"
}

func (r repo) SetPlayback(ctx context.Context, params *room.SetPlaybackParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	if err := r.rc.HSet(ctx, r.getPlaybackKey(params.RoomId), params.Playback).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetPlayback(ctx context.Context, roomId string) (room.Playback, error) {
	res, err := r.rc.HGetAll(ctx, r.getPlaybackKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Playback{}, err
	}

	if len(res) == 0 {
		return room.Playback{}, room.ErrPlaybackNotFound
	}

	position, _ := strconv.ParseFloat(res["position"], 64)
	revision, _ := strconv.ParseInt(res["revision"], 10, 64)
	lastChangedAt, _ := strconv.ParseInt(res["last_changed_at"], 10, 64)

	return room.Playback{
		VideoId:       res["video_id"],
		Position:      position,
		IsPlaying:     res["is_playing"] == "1",
		Revision:      revision,
		LastChangedBy: res["last_changed_by"],
		LastChangedAt: lastChangedAt,
	}, nil
}

// CompareAndSetPlayback applies the new playback state only if the stored
// revision still matches ExpectedRevision. Returns false on a lost race.
func (r repo) CompareAndSetPlayback(ctx context.Context, params *room.CompareAndSetPlaybackParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)

	res, err := r.rc.EvalSha(ctx, r.playbackCasScript,
		[]string{r.getPlaybackKey(params.RoomId)},
		params.ExpectedRevision,
		params.Playback.VideoId,
		params.Playback.Position,
		r.boolToField(params.Playback.IsPlaying),
		params.Playback.LastChangedBy,
		params.Playback.LastChangedAt,
	).Int64()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return res == 1, nil
}
