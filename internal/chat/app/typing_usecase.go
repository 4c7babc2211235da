package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/internal/chat/repository"
	"room_chat_service/pkg/logger"
)

// TypingUseCase owns the single typing slot of each room. Every SetTyping
// overwrites the slot (last writer wins) and restarts a quiet-period timer;
// when the timer fires without another keystroke the slot is cleared.
// Readers still must treat old markers as stale on their own clock, the
// debounce clear is best effort.
type TypingUseCase struct {
	roomRepo repository.RoomRepository
	quiet    time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTypingUseCase init typing use case. quiet <= 0 falls back to the
// default expiry window.
func NewTypingUseCase(r repository.RoomRepository, quiet time.Duration) *TypingUseCase {
	if quiet <= 0 {
		quiet = domain.TypingExpiry
	}
	return &TypingUseCase{
		roomRepo: r,
		quiet:    quiet,
		timers:   make(map[string]*time.Timer),
	}
}

// SetTyping write the typing marker and restart the debounce clear
func (uc *TypingUseCase) SetTyping(ctx context.Context, roomID string, typist domain.Identity) error {
	marker := &domain.TypingMarker{
		UserID:      typist.ID,
		DisplayName: typist.DisplayName,
		MarkedAt:    time.Now().UnixMilli(),
	}
	if err := uc.roomRepo.SetTyping(ctx, roomID, marker); err != nil {
		return err
	}

	uc.mu.Lock()
	if t, ok := uc.timers[roomID]; ok {
		t.Stop()
	}
	uc.timers[roomID] = time.AfterFunc(uc.quiet, func() { uc.expire(roomID) })
	uc.mu.Unlock()
	return nil
}

// Clear cancel the pending debounce and clear the slot now
func (uc *TypingUseCase) Clear(ctx context.Context, roomID string) error {
	uc.mu.Lock()
	if t, ok := uc.timers[roomID]; ok {
		t.Stop()
		delete(uc.timers, roomID)
	}
	uc.mu.Unlock()
	return uc.roomRepo.SetTyping(ctx, roomID, nil)
}

// Stop cancel every pending debounce timer, for shutdown
func (uc *TypingUseCase) Stop() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for roomID, t := range uc.timers {
		t.Stop()
		delete(uc.timers, roomID)
	}
}

func (uc *TypingUseCase) expire(roomID string) {
	uc.mu.Lock()
	delete(uc.timers, roomID)
	uc.mu.Unlock()

	if err := uc.roomRepo.SetTyping(context.Background(), roomID, nil); err != nil {
		logger.Log.Error("typing expiry clear failed", zap.String("RoomID", roomID), zap.Error(err))
	}
}
