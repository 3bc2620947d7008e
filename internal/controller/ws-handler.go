package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/subscriber"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// connectRoom upgrades the request to a websocket session: the
// participant joins the room, receives a JOINED snapshot, and from then
// on gets every room event in order through the writer pump. Closing the
// connection leaves the room.
func (c *controller) connectRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	participant, err := c.identityService.Parse(r.URL.Query().Get("token"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	// Join registers the subscription under the room lock, so the
	// snapshot and the event stream line up with no gap and no overlap,
	// and nothing is broadcast to a connection that never became a member.
	joinResp, err := c.roomService.Join(r.Context(), &room.JoinRoomParams{
		RoomId:      roomId,
		MemberId:    participant.Id,
		DisplayName: participant.DisplayName,
		Conn:        conn,
	})
	if err != nil {
		_, code := mapError(err)
		conn.WriteJSON(&Output{Type: "ERROR", Payload: map[string]any{"code": code, "message": err.Error()}})
		c.teardown(r.Context(), conn)
		return
	}
	sub := joinResp.Subscriber
	c.subs.Store(conn, sub)

	// the snapshot goes out before the pump starts, so it is always the
	// first frame the client sees
	if err := conn.WriteJSON(&Output{Type: "JOINED", Payload: joinResp.Snapshot}); err != nil {
		c.logger.DebugContext(r.Context(), "failed to write snapshot", "error", err)
		c.teardown(r.Context(), conn)
		c.leave(r.Context(), roomId, participant.Id)
		return
	}

	go c.writePump(r.Context(), sub)

	ctx := context.WithValue(r.Context(), roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, participantCtxKey, participant)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("room_id", roomId))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("member_id", participant.Id))

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	c.teardown(ctx, conn)
	c.leave(ctx, roomId, participant.Id)
}

// writePump is the connection's only writer after the snapshot. It drains
// the subscriber queue until the subscriber is closed or a write fails.
func (c *controller) writePump(ctx context.Context, sub *subscriber.Subscriber) {
	for data := range sub.Queue() {
		if err := sub.Conn().WriteMessage(websocket.TextMessage, data); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
			return
		}
	}
}

func (c *controller) teardown(ctx context.Context, conn *websocket.Conn) {
	c.subs.Delete(conn)
	if _, err := c.roomService.UnsubscribeByConn(conn); err != nil && !errors.Is(err, subscriber.ErrNotFound) {
		c.logger.WarnContext(ctx, "failed to unsubscribe", "error", err)
	}
	conn.Close()
}

func (c *controller) leave(ctx context.Context, roomId, memberId string) {
	if err := c.roomService.Leave(context.WithoutCancel(ctx), &room.LeaveRoomParams{
		RoomId:   roomId,
		MemberId: memberId,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to leave room", "error", err)
	}
}

// send routes a handler reply through the subscriber queue so it never
// races with the writer pump.
func (c *controller) send(conn *websocket.Conn, output *Output) error {
	value, ok := c.subs.Load(conn)
	if !ok {
		return subscriber.ErrNotFound
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if !value.(*subscriber.Subscriber).Enqueue(data) {
		return fmt.Errorf("subscriber queue full")
	}

	return nil
}

type EmptyInput struct{}

func (c *controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type PlayerIntentInput struct {
	Position         float64 `json:"position"`
	ExpectedRevision int64   `json:"expected_revision"`
}

func (c *controller) handlePlayerPlay(ctx context.Context, conn *websocket.Conn, input PlayerIntentInput) error {
	return c.applyIntent(ctx, conn, room.ActionPlay, input)
}

func (c *controller) handlePlayerPause(ctx context.Context, conn *websocket.Conn, input PlayerIntentInput) error {
	return c.applyIntent(ctx, conn, room.ActionPause, input)
}

func (c *controller) handlePlayerSeek(ctx context.Context, conn *websocket.Conn, input PlayerIntentInput) error {
	return c.applyIntent(ctx, conn, room.ActionSeek, input)
}

func (c *controller) applyIntent(ctx context.Context, conn *websocket.Conn, action room.PlaybackAction, input PlayerIntentInput) error {
	playback, err := c.roomService.ApplyIntent(ctx, &room.ApplyIntentParams{
		RoomId:           c.getRoomIdFromCtx(ctx),
		SenderId:         c.getParticipantFromCtx(ctx).Id,
		Action:           action,
		Position:         input.Position,
		ExpectedRevision: input.ExpectedRevision,
	})
	if err != nil {
		if errors.Is(err, room.ErrStaleRevision) {
			// the rejection carries the authoritative state so the
			// sender can re-converge and retry
			return c.send(conn, &Output{Type: "ERROR", Payload: map[string]any{
				"code":     codeConflict,
				"playback": playback,
			}})
		}

		return fmt.Errorf("failed to apply playback intent: %w", err)
	}

	return nil
}

type SetVideoInput struct {
	VideoId string `json:"video_id"`
}

func (c *controller) handleSetVideo(ctx context.Context, _ *websocket.Conn, input SetVideoInput) error {
	if _, err := c.roomService.SetVideo(ctx, &room.SetVideoParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		VideoId:  input.VideoId,
		SenderId: c.getParticipantFromCtx(ctx).Id,
	}); err != nil {
		return fmt.Errorf("failed to set video: %w", err)
	}

	return nil
}

type ChatMessageInput struct {
	Text string `json:"text"`
}

func (c *controller) handleChatMessage(ctx context.Context, _ *websocket.Conn, input ChatMessageInput) error {
	if _, err := c.roomService.AppendChat(ctx, &room.AppendChatParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getParticipantFromCtx(ctx).Id,
		Text:     input.Text,
	}); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	return nil
}

type ChatHistoryInput struct {
	SinceSequence int64 `json:"since_sequence"`
}

func (c *controller) handleChatHistory(ctx context.Context, conn *websocket.Conn, input ChatHistoryInput) error {
	messages, err := c.roomService.ChatHistory(ctx, &room.ChatHistoryParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		SenderId:      c.getParticipantFromCtx(ctx).Id,
		SinceSequence: input.SinceSequence,
	})
	if err != nil {
		return fmt.Errorf("failed to get chat history: %w", err)
	}

	return c.send(conn, &Output{Type: "CHAT_HISTORY", Payload: map[string]any{
		"messages": messages,
	}})
}
