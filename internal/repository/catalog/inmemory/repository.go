package inmemory

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/watchroom/server/internal/repository/catalog"
)

type repo struct {
	videos map[string]catalog.Video
	mu     sync.RWMutex
}

func NewRepo() *repo {
	return &repo{videos: make(map[string]catalog.Video)}
}

func (r *repo) SetVideo(_ context.Context, params *catalog.SetVideoParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.videos[params.VideoId] = params.Video

	return nil
}

func (r *repo) GetVideo(_ context.Context, videoId string) (catalog.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, ok := r.videos[videoId]
	if !ok {
		return catalog.Video{}, catalog.ErrVideoNotFound
	}

	return video, nil
}

func (r *repo) GetVideoIds(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.videos)
	slices.SortFunc(ids, func(a, b string) int {
		if d := r.videos[b].CreatedAt - r.videos[a].CreatedAt; d != 0 {
			return int(d)
		}
		return strings.Compare(a, b)
	})

	return ids, nil
}
