package app

import (
	"sync"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/internal/chat/repository"
	"room_chat_service/pkg/docstore"
)

// SyncSession tracks the live subscriptions of one connected client: at most
// one per room plus one registry subscription. Callbacks fire from delivery
// goroutines with full snapshots, so late or reordered deliveries are safe to
// apply as-is. Close tears everything down and is safe to call twice.
type SyncSession struct {
	roomRepo repository.RoomRepository

	mu       sync.Mutex
	rooms    map[string]docstore.UnsubscribeFunc
	registry docstore.UnsubscribeFunc
	closed   bool
}

// NewSyncSession init a session with no subscriptions
func NewSyncSession(r repository.RoomRepository) *SyncSession {
	return &SyncSession{
		roomRepo: r,
		rooms:    make(map[string]docstore.UnsubscribeFunc),
	}
}

// SubscribeRoom start delivering snapshots of one room. Subscribing to a room
// this session already watches replaces the old subscription.
func (s *SyncSession) SubscribeRoom(roomID string, onChange func(*domain.Room)) error {
	unsub, err := s.roomRepo.SubscribeRoom(roomID, onChange)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsub()
		return nil
	}
	prev := s.rooms[roomID]
	s.rooms[roomID] = unsub
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return nil
}

// UnsubscribeRoom stop watching one room. A room this session never watched
// is a no-op. Membership is untouched, leaving the view is not leaving the
// room.
func (s *SyncSession) UnsubscribeRoom(roomID string) {
	s.mu.Lock()
	unsub := s.rooms[roomID]
	delete(s.rooms, roomID)
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// SubscribeRegistry start delivering full room-set snapshots. Replaces any
// earlier registry subscription of this session.
func (s *SyncSession) SubscribeRegistry(onChange func([]domain.Room)) error {
	unsub, err := s.roomRepo.SubscribeRooms(onChange)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsub()
		return nil
	}
	prev := s.registry
	s.registry = unsub
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return nil
}

// Close tear down every subscription of this session. Idempotent.
func (s *SyncSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	rooms := s.rooms
	registry := s.registry
	s.rooms = nil
	s.registry = nil
	s.mu.Unlock()

	for _, unsub := range rooms {
		unsub()
	}
	if registry != nil {
		registry()
	}
}
