package room

type SetRoomParams struct {
	RoomId    string
	Name      string
	CreatorId string
	CreatedAt int64
}

type AddMemberParams struct {
	RoomId      string
	MemberId    string
	DisplayName string
}

type RemoveMemberParams struct {
	RoomId   string
	MemberId string
}

type GetMemberParams struct {
	RoomId   string
	MemberId string
}

type SetPlaybackParams struct {
	RoomId   string
	Playback Playback
}

// CompareAndSetPlaybackParams carries the new playback state to apply iff
// the stored revision still equals ExpectedRevision. Playback.Revision
// must already be ExpectedRevision+1.
type CompareAndSetPlaybackParams struct {
	RoomId           string
	ExpectedRevision int64
	Playback         Playback
}

type AppendMessageParams struct {
	RoomId  string
	Message Message
}

type GetMessagesParams struct {
	RoomId        string
	SinceSequence int64
}
