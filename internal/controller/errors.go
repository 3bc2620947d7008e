package controller

import (
	"errors"
	"net/http"

	"github.com/watchroom/server/internal/service/catalog"
	"github.com/watchroom/server/internal/service/identity"
	"github.com/watchroom/server/internal/service/room"
)

const (
	codeNotFound        = "NOT_FOUND"
	codeForbidden       = "FORBIDDEN"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeInvalidInput    = "INVALID_INPUT"
	codeConflict        = "CONFLICT"
	codeRoomFull        = "ROOM_FULL"
	codeInternal        = "INTERNAL"
)

// mapError translates a service error into an http status and a stable
// machine-readable code shared by the rest and ws surfaces.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrVideoNotFound),
		errors.Is(err, catalog.ErrVideoNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, room.ErrPermissionDenied):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, room.ErrUnauthenticated),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized, codeUnauthenticated
	case errors.Is(err, room.ErrInvalidInput),
		errors.Is(err, identity.ErrInvalidDisplayName),
		errors.Is(err, catalog.ErrInvalidVideo):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, room.ErrStaleRevision):
		return http.StatusConflict, codeConflict
	case errors.Is(err, room.ErrRoomFull):
		return http.StatusConflict, codeRoomFull
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
