package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/watchroom/server/internal/repository/catalog"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrInvalidVideo  = errors.New("invalid video")
)

type Video struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
	UploadedBy  string `json:"uploaded_by"`
	CreatedAt   int64  `json:"created_at"`
}

type VideoRepo interface {
	SetVideo(context.Context, *catalog.SetVideoParams) error
	GetVideo(ctx context.Context, videoId string) (catalog.Video, error)
	GetVideoIds(ctx context.Context) ([]string, error)
}

type service struct {
	videoRepo VideoRepo
}

func NewService(videoRepo VideoRepo) *service {
	return &service{videoRepo: videoRepo}
}

func (s *service) Lookup(ctx context.Context, videoId string) (Video, error) {
	video, err := s.videoRepo.GetVideo(ctx, videoId)
	if err != nil {
		if errors.Is(err, catalog.ErrVideoNotFound) {
			return Video{}, ErrVideoNotFound
		}
		return Video{}, fmt.Errorf("failed to get video: %w", err)
	}

	return s.toVideo(videoId, video), nil
}

// VideoExists reports whether the catalog knows the video id.
func (s *service) VideoExists(ctx context.Context, videoId string) (bool, error) {
	_, err := s.videoRepo.GetVideo(ctx, videoId)
	if err != nil {
		if errors.Is(err, catalog.ErrVideoNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *service) List(ctx context.Context) ([]Video, error) {
	ids, err := s.videoRepo.GetVideoIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get video ids: %w", err)
	}

	videos := make([]Video, 0, len(ids))
	for _, id := range ids {
		video, err := s.videoRepo.GetVideo(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get video: %w", err)
		}

		videos = append(videos, s.toVideo(id, video))
	}

	return videos, nil
}

type AddVideoParams struct {
	Title       string
	Description string
	URL         string
	Thumbnail   string
	UploadedBy  string
}

func (s *service) Add(ctx context.Context, params *AddVideoParams) (Video, error) {
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.URL) == "" {
		return Video{}, ErrInvalidVideo
	}

	video := catalog.Video{
		Title:       params.Title,
		Description: params.Description,
		URL:         params.URL,
		Thumbnail:   params.Thumbnail,
		UploadedBy:  params.UploadedBy,
		CreatedAt:   time.Now().UnixMilli(),
	}

	videoId := uuid.NewString()
	if err := s.videoRepo.SetVideo(ctx, &catalog.SetVideoParams{
		VideoId: videoId,
		Video:   video,
	}); err != nil {
		return Video{}, fmt.Errorf("failed to set video: %w", err)
	}

	return s.toVideo(videoId, video), nil
}

func (s *service) toVideo(videoId string, video catalog.Video) Video {
	return Video{
		Id:          videoId,
		Title:       video.Title,
		Description: video.Description,
		URL:         video.URL,
		Thumbnail:   video.Thumbnail,
		UploadedBy:  video.UploadedBy,
		CreatedAt:   video.CreatedAt,
	}
}
