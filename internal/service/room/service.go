package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	roomRepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/subscriber"
	"github.com/watchroom/server/pkg/randstr"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrVideoNotFound    = errors.New("video not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStaleRevision    = errors.New("stale revision")
	ErrRoomFull         = errors.New("room is full")
)

const roomIdLength = 8

type RoomRepo interface {
	// room
	SetRoom(context.Context, *roomRepo.SetRoomParams) error
	GetRoom(ctx context.Context, roomId string) (roomRepo.Room, error)
	RemoveRoom(ctx context.Context, roomId string) error
	TouchRoom(ctx context.Context, roomId string, at int64) error
	GetActiveRoomIds(ctx context.Context) ([]string, error)
	MarkRoomEmpty(ctx context.Context, roomId string, at int64) error
	ClearRoomEmpty(ctx context.Context, roomId string) error
	GetEmptyRoomIds(ctx context.Context, before int64) ([]string, error)
	// member
	AddMember(context.Context, *roomRepo.AddMemberParams) error
	RemoveMember(context.Context, *roomRepo.RemoveMemberParams) error
	GetMember(context.Context, *roomRepo.GetMemberParams) (roomRepo.Member, error)
	GetMemberIds(ctx context.Context, roomId string) ([]string, error)
	// playback
	SetPlayback(context.Context, *roomRepo.SetPlaybackParams) error
	GetPlayback(ctx context.Context, roomId string) (roomRepo.Playback, error)
	CompareAndSetPlayback(context.Context, *roomRepo.CompareAndSetPlaybackParams) (bool, error)
	// chat
	AppendMessage(context.Context, *roomRepo.AppendMessageParams) (int64, error)
	GetMessages(context.Context, *roomRepo.GetMessagesParams) ([]roomRepo.Message, error)
}

type iSubscriberRepo interface {
	Add(conn *websocket.Conn, memberId, roomId string) (*subscriber.Subscriber, error)
	RemoveByConn(conn *websocket.Conn) (*subscriber.Subscriber, error)
	RemoveByMemberId(memberId string) (*subscriber.Subscriber, error)
	GetByConn(conn *websocket.Conn) (*subscriber.Subscriber, error)
	GetByRoomId(roomId string) []*subscriber.Subscriber
}

type iCatalog interface {
	VideoExists(ctx context.Context, videoId string) (bool, error)
}

type Config struct {
	MembersLimit    int
	RoomGracePeriod time.Duration
}

type service struct {
	roomRepo  RoomRepo
	subRepo   iSubscriberRepo
	catalog   iCatalog
	logger    *slog.Logger
	generator *randstr.Generator

	membersLimit    int
	roomGracePeriod time.Duration

	// one mutex per room; every state transition for a room runs under
	// its mutex, which is what makes revision and sequence assignment a
	// strict total order per room.
	roomLocks sync.Map
}

func NewService(roomRepo RoomRepo, subRepo iSubscriberRepo, catalog iCatalog, logger *slog.Logger, cfg *Config) *service {
	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	return &service{
		roomRepo:        roomRepo,
		subRepo:         subRepo,
		catalog:         catalog,
		logger:          logger,
		generator:       randstr.New(letterBytes),
		membersLimit:    cfg.MembersLimit,
		roomGracePeriod: cfg.RoomGracePeriod,
	}
}
