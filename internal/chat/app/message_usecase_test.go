package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/pkg/errs"
	"room_chat_service/pkg/logger"
)

func newMessageUseCase(mockRepo *MockRoomRepo) *MessageUseCase {
	return NewMessageUseCase(mockRepo, NewTypingUseCase(mockRepo, 0))
}

func TestMessageUseCase_Send(t *testing.T) {
	ctx := context.Background()
	sender := domain.Identity{ID: "u1", DisplayName: "User One"}
	room := &domain.Room{ID: "r1", Name: "general", Members: []domain.Identity{sender}}

	logger.SetNewNop()

	t.Run("append and clear typing", func(t *testing.T) {
		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "r1").Return(room, nil).Once()
		mockRepo.On("AppendMessage", ctx, "r1", mock.Anything).Return(nil).Once()
		mockRepo.On("SetTyping", ctx, "r1", (*domain.TypingMarker)(nil)).Return(nil).Once()

		uc := newMessageUseCase(mockRepo)
		msg, err := uc.Send(ctx, "r1", sender, "hi")

		assert.NoError(t, err)
		assert.NotNil(t, msg)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, sender.ID, msg.SenderID)
		assert.Equal(t, "hi", msg.Content)
		assert.Empty(t, msg.SeenBy)
		mockRepo.AssertExpectations(t)
	})

	t.Run("content is trimmed", func(t *testing.T) {
		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "r1").Return(room, nil).Once()
		mockRepo.On("AppendMessage", ctx, "r1", mock.MatchedBy(func(m domain.ChatMessage) bool {
			return m.Content == "hi"
		})).Return(nil).Once()
		mockRepo.On("SetTyping", ctx, "r1", (*domain.TypingMarker)(nil)).Return(nil).Once()

		uc := newMessageUseCase(mockRepo)
		msg, err := uc.Send(ctx, "r1", sender, "  hi  ")

		assert.NoError(t, err)
		assert.Equal(t, "hi", msg.Content)
		mockRepo.AssertExpectations(t)
	})

	t.Run("whitespace-only content is a silent no-op", func(t *testing.T) {
		mockRepo := new(MockRoomRepo)

		uc := newMessageUseCase(mockRepo)
		msg, err := uc.Send(ctx, "r1", sender, "   \n\t ")

		assert.NoError(t, err)
		assert.Nil(t, msg)
		mockRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vanished room", func(t *testing.T) {
		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "gone").Return(nil, errs.NotFound("document rooms/gone not found")).Once()

		uc := newMessageUseCase(mockRepo)
		_, err := uc.Send(ctx, "gone", sender, "hi")

		assert.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestMessageUseCase_MarkSeen(t *testing.T) {
	ctx := context.Background()

	logger.SetNewNop()

	t.Run("marks every foreign message once", func(t *testing.T) {
		room := &domain.Room{ID: "r1", Messages: []domain.ChatMessage{
			{ID: "m1", SenderID: "u1", Content: "hi"},
			{ID: "m2", SenderID: "u2", Content: "own message"},
			{ID: "m3", SenderID: "u1", Content: "already seen", SeenBy: []string{"u2"}},
			{ID: "m4", SenderID: "u3", Content: "seen by someone else", SeenBy: []string{"u1"}},
		}}

		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "r1").Return(room, nil).Once()
		mockRepo.On("ReplaceMessages", ctx, "r1", mock.MatchedBy(func(msgs []domain.ChatMessage) bool {
			return len(msgs) == 4 &&
				assert.ObjectsAreEqual([]string{"u2"}, msgs[0].SeenBy) &&
				msgs[1].SeenBy == nil &&
				assert.ObjectsAreEqual([]string{"u2"}, msgs[2].SeenBy) &&
				assert.ObjectsAreEqual([]string{"u1", "u2"}, msgs[3].SeenBy)
		})).Return(nil).Once()

		uc := newMessageUseCase(mockRepo)
		err := uc.MarkSeen(ctx, "r1", "u2")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("idempotent when everything is seen already", func(t *testing.T) {
		room := &domain.Room{ID: "r1", Messages: []domain.ChatMessage{
			{ID: "m1", SenderID: "u1", SeenBy: []string{"u2"}},
			{ID: "m2", SenderID: "u2"},
		}}

		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "r1").Return(room, nil).Once()

		uc := newMessageUseCase(mockRepo)
		err := uc.MarkSeen(ctx, "r1", "u2")

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "ReplaceMessages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty log is a no-op", func(t *testing.T) {
		room := &domain.Room{ID: "r1"}

		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "r1").Return(room, nil).Once()

		uc := newMessageUseCase(mockRepo)
		err := uc.MarkSeen(ctx, "r1", "u2")

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "ReplaceMessages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vanished room", func(t *testing.T) {
		mockRepo := new(MockRoomRepo)
		mockRepo.On("FindByID", ctx, "gone").Return(nil, errs.NotFound("document rooms/gone not found")).Once()

		uc := newMessageUseCase(mockRepo)
		err := uc.MarkSeen(ctx, "gone", "u2")

		assert.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}
