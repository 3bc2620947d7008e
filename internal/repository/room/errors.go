package room

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrPlaybackNotFound = errors.New("playback not found")
)
