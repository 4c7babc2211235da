package app

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/internal/chat/repository"
	"room_chat_service/pkg/errs"
)

// RoomUseCase room registry and membership operations
type RoomUseCase struct {
	roomRepo repository.RoomRepository
}

// NewRoomUseCase init room use case
func NewRoomUseCase(r repository.RoomRepository) *RoomUseCase {
	return &RoomUseCase{roomRepo: r}
}

// CreateRoom create a room. The creator is auto-joined as the first member and
// a welcome message seeds the log. Private rooms get a random 4-digit access
// key; the key is an obscurity gate, not a secret.
func (uc *RoomUseCase) CreateRoom(
	ctx context.Context,
	name string,
	visibility string,
	creator domain.Identity,
) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("room name must not be empty")
	}

	vis := domain.Visibility(visibility)
	if vis != domain.VisibilityPublic && vis != domain.VisibilityPrivate {
		return nil, errs.Validation("visibility must be Public or Private")
	}

	now := time.Now().UnixMilli()
	room := &domain.Room{
		ID:          uuid.New().String(),
		Name:        name,
		Visibility:  vis,
		Members:     []domain.Identity{creator},
		MemberCount: 1,
		Messages: []domain.ChatMessage{{
			ID:       uuid.New().String(),
			SenderID: creator.ID,
			Content:  "Welcome to " + name,
			SentAt:   now,
		}},
		CreatedAt: now,
	}
	if vis == domain.VisibilityPrivate {
		room.AccessKey = newAccessKey()
	}

	if err := uc.roomRepo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// newAccessKey 1000..9999, always exactly 4 digits
func newAccessKey() string {
	return strconv.Itoa(rand.Intn(9000) + 1000)
}

// JoinRoom add the identity to the room. Idempotent: joining a room the
// identity already belongs to succeeds without touching the member count.
// The membership check and the write are separate steps, so two first-time
// joins racing for the same identity can both pass the check; the member set
// stays duplicate-free (store-level union) but the counter may drift. Known
// and accepted, the counter is display-only.
func (uc *RoomUseCase) JoinRoom(ctx context.Context, roomID string, identity domain.Identity, accessKey string) error {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return err
	}

	if room.HasMember(identity.ID) {
		return nil
	}

	if room.IsPrivate() && !uc.VerifyKey(room, accessKey) {
		return errs.AccessDenied("wrong access key")
	}

	return uc.roomRepo.AddMember(ctx, roomID, identity)
}

// VerifyKey exact match against the room access key. Never mutates the room,
// and failed attempts are not counted or logged.
func (uc *RoomUseCase) VerifyKey(room *domain.Room, submitted string) bool {
	return room.AccessKey != "" && room.AccessKey == submitted
}

// FindRoom fetch one room
func (uc *RoomUseCase) FindRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	return uc.roomRepo.FindByID(ctx, roomID)
}

// ListRooms fetch the room registry once
func (uc *RoomUseCase) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return uc.roomRepo.ListRooms(ctx)
}

// SearchRooms case-insensitive substring filter over the registry
func (uc *RoomUseCase) SearchRooms(ctx context.Context, term string) ([]domain.Room, error) {
	rooms, err := uc.roomRepo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterRooms(rooms, term), nil
}

// GetMembers fetch the member identities of a room
func (uc *RoomUseCase) GetMembers(ctx context.Context, roomID string) ([]domain.Identity, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return room.Members, nil
}
