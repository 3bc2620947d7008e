package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/watchroom/server/internal/repository/catalog"
)

// Seed loads the built-in demo videos so a fresh deployment has something
// to watch. Existing entries with the same ids are overwritten.
func (s *service) Seed(ctx context.Context) error {
	now := time.Now().UnixMilli()

	seeds := map[string]catalog.Video{
		"big-buck-bunny": {
			Title:       "Big Buck Bunny",
			Description: "A short animated film about a day in the life of Big Buck Bunny",
			URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
			Thumbnail:   "https://images.pexels.com/photos/33129/popcorn-movie-party-entertainment.jpg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
			UploadedBy:  "demo",
			CreatedAt:   now,
		},
		"elephants-dream": {
			Title:       "Elephant Dream",
			Description: "The first Blender Open Movie from 2006",
			URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
			Thumbnail:   "https://images.pexels.com/photos/7991579/pexels-photo-7991579.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
			UploadedBy:  "demo",
			CreatedAt:   now,
		},
		"sintel": {
			Title:       "Sintel",
			Description: "Third Blender Open Movie from 2010",
			URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
			Thumbnail:   "https://images.pexels.com/photos/7234255/pexels-photo-7234255.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1",
			UploadedBy:  "demo",
			CreatedAt:   now,
		},
	}

	for videoId, video := range seeds {
		if err := s.videoRepo.SetVideo(ctx, &catalog.SetVideoParams{
			VideoId: videoId,
			Video:   video,
		}); err != nil {
			return fmt.Errorf("failed to seed video %s: %w", videoId, err)
		}
	}

	return nil
}
