package room

type Room struct {
	Name      string `redis:"name"`
	CreatorId string `redis:"creator_id"`
	CreatedAt int64  `redis:"created_at"`
}

type Member struct {
	DisplayName string `redis:"display_name"`
}

type Playback struct {
	VideoId       string  `redis:"video_id"`
	Position      float64 `redis:"position"`
	IsPlaying     bool    `redis:"is_playing"`
	Revision      int64   `redis:"revision"`
	LastChangedBy string  `redis:"last_changed_by"`
	LastChangedAt int64   `redis:"last_changed_at"`
}

type Message struct {
	Id         string `json:"id"`
	AuthorId   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	SentAt     int64  `json:"sent_at"`
	Sequence   int64  `json:"sequence"`
}
