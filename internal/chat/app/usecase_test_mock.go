package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/pkg/docstore"
)

// MockRoomRepo Mock RoomRepository
type MockRoomRepo struct {
	mock.Mock
}

func (m *MockRoomRepo) CreateRoom(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepo) FindByID(ctx context.Context, roomID string) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepo) AddMember(ctx context.Context, roomID string, member domain.Identity) error {
	args := m.Called(ctx, roomID, member)
	return args.Error(0)
}

func (m *MockRoomRepo) AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) error {
	args := m.Called(ctx, roomID, msg)
	return args.Error(0)
}

func (m *MockRoomRepo) ReplaceMessages(ctx context.Context, roomID string, msgs []domain.ChatMessage) error {
	args := m.Called(ctx, roomID, msgs)
	return args.Error(0)
}

func (m *MockRoomRepo) SetTyping(ctx context.Context, roomID string, marker *domain.TypingMarker) error {
	args := m.Called(ctx, roomID, marker)
	return args.Error(0)
}

func (m *MockRoomRepo) SubscribeRoom(roomID string, onChange func(*domain.Room)) (docstore.UnsubscribeFunc, error) {
	args := m.Called(roomID, onChange)
	if args.Get(0) != nil {
		return args.Get(0).(docstore.UnsubscribeFunc), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomRepo) SubscribeRooms(onChange func([]domain.Room)) (docstore.UnsubscribeFunc, error) {
	args := m.Called(onChange)
	if args.Get(0) != nil {
		return args.Get(0).(docstore.UnsubscribeFunc), args.Error(1)
	}
	return nil, args.Error(1)
}
