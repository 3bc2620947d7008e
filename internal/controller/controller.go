package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/subscriber"
	"github.com/watchroom/server/internal/service/catalog"
	"github.com/watchroom/server/internal/service/identity"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/validator"
	"github.com/watchroom/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (room.RoomSnapshot, error)
	ListActiveRooms(context.Context) ([]room.RoomInfo, error)
	Join(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	Leave(context.Context, *room.LeaveRoomParams) error
	UnsubscribeByConn(*websocket.Conn) (*subscriber.Subscriber, error)
	ApplyIntent(context.Context, *room.ApplyIntentParams) (room.Playback, error)
	SetVideo(context.Context, *room.SetVideoParams) (room.Playback, error)
	AppendChat(context.Context, *room.AppendChatParams) (room.Message, error)
	ChatHistory(context.Context, *room.ChatHistoryParams) ([]room.Message, error)
}

type iIdentityService interface {
	Login(displayName string) (identity.LoginResponse, error)
	Parse(tokenString string) (identity.Participant, error)
}

type iCatalogService interface {
	List(ctx context.Context) ([]catalog.Video, error)
	Lookup(ctx context.Context, videoId string) (catalog.Video, error)
	Add(ctx context.Context, params *catalog.AddVideoParams) (catalog.Video, error)
}

type controller struct {
	roomService     iRoomService
	identityService iIdentityService
	catalogService  iCatalogService
	upgrader        websocket.Upgrader
	validate        *validator.Validator
	logger          *slog.Logger
	wsmux           *wsrouter.WSRouter
	// subs maps an open ws connection to its subscriber so message
	// handlers can reply through the writer pump instead of writing to
	// the connection directly.
	subs sync.Map
}

func NewController(roomService iRoomService, identityService iIdentityService, catalogService iCatalogService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService:     roomService,
		identityService: identityService,
		catalogService:  catalogService,
		validate:        validator.NewValidator(),
		logger:          logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
