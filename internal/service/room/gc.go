package room

import (
	"context"
	"time"
)

// RunGC sweeps rooms whose member set has been empty past the grace
// period. Blocking; run on its own goroutine. Sweep failures are logged
// and never reach a client.
func (s *service) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepEmptyRooms(ctx)
		}
	}
}

func (s *service) sweepEmptyRooms(ctx context.Context) {
	before := time.Now().Add(-s.roomGracePeriod).UnixMilli()

	roomIds, err := s.roomRepo.GetEmptyRoomIds(ctx, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "gc: failed to list empty rooms", "error", err)
		return
	}

	for _, roomId := range roomIds {
		s.reapRoom(ctx, roomId)
	}
}

func (s *service) reapRoom(ctx context.Context, roomId string) {
	unlock := s.lockRoom(roomId)
	defer unlock()

	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		s.logger.ErrorContext(ctx, "gc: failed to get member ids", "error", err, "room_id", roomId)
		return
	}

	// someone rejoined during the grace period
	if len(memberIds) > 0 {
		if err := s.roomRepo.ClearRoomEmpty(ctx, roomId); err != nil {
			s.logger.ErrorContext(ctx, "gc: failed to clear empty mark", "error", err, "room_id", roomId)
		}
		return
	}

	if err := s.roomRepo.RemoveRoom(ctx, roomId); err != nil {
		s.logger.ErrorContext(ctx, "gc: failed to remove room", "error", err, "room_id", roomId)
		return
	}

	s.roomLocks.Delete(roomId)
	s.logger.InfoContext(ctx, "gc: room deleted", "room_id", roomId)
}
