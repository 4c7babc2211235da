package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/internal/chat/repository"
	"room_chat_service/pkg/docstore"
	"room_chat_service/pkg/logger"
)

func newTypingFixture(t *testing.T, quiet time.Duration) (repository.RoomRepository, *TypingUseCase, string) {
	t.Helper()
	logger.SetNewNop()

	repo := repository.NewDocRoomRepository(docstore.NewMemoryStore())
	uc := NewRoomUseCase(repo)
	room, err := uc.CreateRoom(context.Background(), "general", "Public",
		domain.Identity{ID: "u1", DisplayName: "User One"})
	require.NoError(t, err)

	return repo, NewTypingUseCase(repo, quiet), room.ID
}

func typingOf(t *testing.T, repo repository.RoomRepository, roomID string) *domain.TypingMarker {
	t.Helper()
	room, err := repo.FindByID(context.Background(), roomID)
	require.NoError(t, err)
	return room.Typing
}

func TestTypingUseCase_SetTyping(t *testing.T) {
	ctx := context.Background()
	repo, typingUC, roomID := newTypingFixture(t, time.Hour) // never expires during the test
	defer typingUC.Stop()

	require.Nil(t, typingOf(t, repo, roomID))

	err := typingUC.SetTyping(ctx, roomID, domain.Identity{ID: "u1", DisplayName: "User One"})
	require.NoError(t, err)

	marker := typingOf(t, repo, roomID)
	require.NotNil(t, marker)
	require.Equal(t, "u1", marker.UserID)
	require.Equal(t, "User One", marker.DisplayName)
	require.NotZero(t, marker.MarkedAt)
}

func TestTypingUseCase_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	repo, typingUC, roomID := newTypingFixture(t, time.Hour)
	defer typingUC.Stop()

	require.NoError(t, typingUC.SetTyping(ctx, roomID, domain.Identity{ID: "u1", DisplayName: "User One"}))
	require.NoError(t, typingUC.SetTyping(ctx, roomID, domain.Identity{ID: "u2", DisplayName: "User Two"}))

	// the single slot holds only the most recent typist
	marker := typingOf(t, repo, roomID)
	require.NotNil(t, marker)
	require.Equal(t, "u2", marker.UserID)
}

func TestTypingUseCase_DebounceExpiry(t *testing.T) {
	ctx := context.Background()
	repo, typingUC, roomID := newTypingFixture(t, 50*time.Millisecond)
	defer typingUC.Stop()

	require.NoError(t, typingUC.SetTyping(ctx, roomID, domain.Identity{ID: "u1", DisplayName: "User One"}))
	require.NotNil(t, typingOf(t, repo, roomID))

	require.Eventually(t, func() bool {
		return typingOf(t, repo, roomID) == nil
	}, 2*time.Second, 10*time.Millisecond, "typing marker should clear after the quiet period")
}

func TestTypingUseCase_Clear(t *testing.T) {
	ctx := context.Background()
	repo, typingUC, roomID := newTypingFixture(t, time.Hour)
	defer typingUC.Stop()

	require.NoError(t, typingUC.SetTyping(ctx, roomID, domain.Identity{ID: "u1", DisplayName: "User One"}))
	require.NoError(t, typingUC.Clear(ctx, roomID))

	require.Nil(t, typingOf(t, repo, roomID))
}

func TestTypingMarker_StaleRead(t *testing.T) {
	now := time.Now()

	fresh := &domain.TypingMarker{UserID: "u1", MarkedAt: now.UnixMilli()}
	require.False(t, fresh.Stale(now))

	old := &domain.TypingMarker{UserID: "u1", MarkedAt: now.Add(-2 * time.Second).UnixMilli()}
	require.True(t, old.Stale(now))

	// an expired marker the writer never cleared is ignored on read
	room := &domain.Room{Typing: old}
	require.Nil(t, room.ActiveTyping(now))

	room.Typing = fresh
	require.NotNil(t, room.ActiveTyping(now))
}
