package room

type Member struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Playback struct {
	VideoId       string  `json:"video_id"`
	Position      float64 `json:"position"`
	IsPlaying     bool    `json:"is_playing"`
	Revision      int64   `json:"revision"`
	LastChangedBy string  `json:"last_changed_by"`
	LastChangedAt int64   `json:"last_changed_at"`
}

type Message struct {
	Id         string `json:"id"`
	AuthorId   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	SentAt     int64  `json:"sent_at"`
	Sequence   int64  `json:"sequence"`
}

type RoomInfo struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	CreatorId    string `json:"creator_id"`
	VideoId      string `json:"video_id"`
	MembersCount int    `json:"members_count"`
	CreatedAt    int64  `json:"created_at"`
}

// RoomSnapshot is an immutable point-in-time copy of room state handed to
// a joiner or reader; callers never receive live references.
type RoomSnapshot struct {
	RoomId    string    `json:"room_id"`
	Name      string    `json:"name"`
	CreatorId string    `json:"creator_id"`
	Members   []Member  `json:"members"`
	Playback  Playback  `json:"playback"`
	Messages  []Message `json:"messages"`
}
