package room

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	roomRepo "github.com/watchroom/server/internal/repository/room"
)

type AppendChatParams struct {
	RoomId   string
	SenderId string
	Text     string
}

// AppendChat adds a message to the room's log and broadcasts it to the
// members present at append time. Later joiners get the log from their
// join snapshot, never as a replay of broadcasts.
func (s *service) AppendChat(ctx context.Context, params *AppendChatParams) (Message, error) {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	member, err := s.requireMember(ctx, params.RoomId, params.SenderId)
	if err != nil {
		return Message{}, err
	}

	text := strings.TrimSpace(params.Text)
	if text == "" {
		return Message{}, ErrInvalidInput
	}

	msg := roomRepo.Message{
		Id:         uuid.NewString(),
		AuthorId:   params.SenderId,
		AuthorName: member.DisplayName,
		Text:       text,
		SentAt:     nowMilli(),
	}

	seq, err := s.roomRepo.AppendMessage(ctx, &roomRepo.AppendMessageParams{
		RoomId:  params.RoomId,
		Message: msg,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	msg.Sequence = seq

	s.touchRoom(ctx, params.RoomId)

	message := toMessage(msg)
	s.broadcast(ctx, params.RoomId, &Event{
		Type:    EventChatAppended,
		Payload: map[string]any{"message": message},
	})

	return message, nil
}

type ChatHistoryParams struct {
	RoomId        string
	SenderId      string
	SinceSequence int64
}

// ChatHistory returns messages after SinceSequence, for reconnect
// catch-up. SinceSequence zero returns the full retained log.
func (s *service) ChatHistory(ctx context.Context, params *ChatHistoryParams) ([]Message, error) {
	if _, err := s.requireMember(ctx, params.RoomId, params.SenderId); err != nil {
		return nil, err
	}

	messages, err := s.roomRepo.GetMessages(ctx, &roomRepo.GetMessagesParams{
		RoomId:        params.RoomId,
		SinceSequence: params.SinceSequence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return toMessages(messages), nil
}
