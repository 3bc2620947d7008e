package controller

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle("ALIVE", wsrouter.Typed(c.handleAlive))

	// player
	mux.Handle("PLAYER_PLAY", wsrouter.Typed(c.handlePlayerPlay))
	mux.Handle("PLAYER_PAUSE", wsrouter.Typed(c.handlePlayerPause))
	mux.Handle("PLAYER_SEEK", wsrouter.Typed(c.handlePlayerSeek))
	mux.Handle("SET_VIDEO", wsrouter.Typed(c.handleSetVideo))

	// chat
	mux.Handle("CHAT_MESSAGE", wsrouter.Typed(c.handleChatMessage))
	mux.Handle("CHAT_HISTORY", wsrouter.Typed(c.handleChatHistory))

	mux.HandleError(c.handleWSError)

	return mux
}

func (c *controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	c.logger.DebugContext(ctx, "ws handler error",
		"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
		"error", err,
	)

	_, code := mapError(err)
	if sendErr := c.send(conn, &Output{Type: "ERROR", Payload: map[string]any{
		"code":    code,
		"message": err.Error(),
	}}); sendErr != nil {
		c.logger.DebugContext(ctx, "failed to send error", "error", sendErr)
	}
}
