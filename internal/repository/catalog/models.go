package catalog

import "errors"

var ErrVideoNotFound = errors.New("video not found")

type Video struct {
	Title       string `redis:"title"`
	Description string `redis:"description"`
	URL         string `redis:"url"`
	Thumbnail   string `redis:"thumbnail"`
	UploadedBy  string `redis:"uploaded_by"`
	CreatedAt   int64  `redis:"created_at"`
}

type SetVideoParams struct {
	VideoId string
	Video   Video
}
