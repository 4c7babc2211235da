package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/internal/chat/repository"
)

// MessageUseCase append-only message log operations
type MessageUseCase struct {
	roomRepo repository.RoomRepository
	typingUC *TypingUseCase
}

// NewMessageUseCase init message use case
func NewMessageUseCase(roomRepo repository.RoomRepository, typingUC *TypingUseCase) *MessageUseCase {
	return &MessageUseCase{
		roomRepo: roomRepo,
		typingUC: typingUC,
	}
}

// Send append one message to the room log. Whitespace-only content is a
// silent no-op returning a nil message. A successful send clears the room's
// typing slot, the sender stopped typing by definition.
func (uc *MessageUseCase) Send(ctx context.Context, roomID string, sender domain.Identity, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	if _, err := uc.roomRepo.FindByID(ctx, roomID); err != nil {
		return nil, err
	}

	msg := domain.ChatMessage{
		ID:       uuid.New().String(),
		SenderID: sender.ID,
		Content:  content,
		SentAt:   time.Now().UnixMilli(),
	}
	if err := uc.roomRepo.AppendMessage(ctx, roomID, msg); err != nil {
		return nil, err
	}

	if err := uc.typingUC.Clear(ctx, roomID); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkSeen add the identity to the seen set of every message it did not send.
// Idempotent, and seen sets only ever grow; messages the identity already saw
// are left untouched. No write happens when nothing changed.
func (uc *MessageUseCase) MarkSeen(ctx context.Context, roomID, identityID string) error {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return err
	}

	changed := false
	for i := range room.Messages {
		msg := &room.Messages[i]
		if msg.SenderID == identityID || msg.SeenByUser(identityID) {
			continue
		}
		msg.SeenBy = append(msg.SeenBy, identityID)
		changed = true
	}
	if !changed {
		return nil
	}

	return uc.roomRepo.ReplaceMessages(ctx, roomID, room.Messages)
}
