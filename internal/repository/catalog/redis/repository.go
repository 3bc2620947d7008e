package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/watchroom/server/internal/repository/catalog"
)

const videoListKey = "videos"

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) getVideoKey(videoId string) string {
	return "video:" + videoId
}

func (r repo) SetVideo(ctx context.Context, params *catalog.SetVideoParams) error {
	pipe := r.rc.TxPipeline()

	pipe.HSet(ctx, r.getVideoKey(params.VideoId), params.Video)
	pipe.ZAdd(ctx, videoListKey, redis.Z{
		Score:  float64(params.Video.CreatedAt),
		Member: params.VideoId,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return nil
}

func (r repo) GetVideo(ctx context.Context, videoId string) (catalog.Video, error) {
	res, err := r.rc.HGetAll(ctx, r.getVideoKey(videoId)).Result()
	if err != nil {
		return catalog.Video{}, err
	}

	if len(res) == 0 {
		return catalog.Video{}, catalog.ErrVideoNotFound
	}

	createdAt, _ := strconv.ParseInt(res["created_at"], 10, 64)

	return catalog.Video{
		Title:       res["title"],
		Description: res["description"],
		URL:         res["url"],
		Thumbnail:   res["thumbnail"],
		UploadedBy:  res["uploaded_by"],
		CreatedAt:   createdAt,
	}, nil
}

// GetVideoIds returns all video ids, newest first.
func (r repo) GetVideoIds(ctx context.Context) ([]string, error) {
	return r.rc.ZRevRange(ctx, videoListKey, 0, -1).Result()
}
