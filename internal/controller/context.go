package controller

import (
	"context"

	"github.com/watchroom/server/internal/service/identity"
)

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	participantCtxKey
)

func (c *controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c *controller) getParticipantFromCtx(ctx context.Context) identity.Participant {
	participant, ok := ctx.Value(participantCtxKey).(identity.Participant)
	if !ok {
		return identity.Participant{}
	}

	return participant
}
