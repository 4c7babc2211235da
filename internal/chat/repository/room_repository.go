package repository

import (
	"context"
	"sort"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/pkg/docstore"
)

const roomsCollection = "rooms"

// RoomRepository definition room aggregate access. Append-only log writes,
// idempotence-guarded member union, and the ephemeral typing slot are kept
// as distinct operations: callers must never rewrite the message log through
// the same path that overwrites the typing field.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	FindByID(ctx context.Context, roomID string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)

	// AddMember unions the identity into the member set and bumps the
	// counter. The caller is responsible for the membership check; this
	// write alone does not protect the counter against double joins.
	AddMember(ctx context.Context, roomID string, member domain.Identity) error

	// AppendMessage appends one entry to the message log.
	AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) error

	// ReplaceMessages rewrites the message log whole. Only markSeen uses it,
	// and only with a log derived from the latest observed snapshot.
	ReplaceMessages(ctx context.Context, roomID string, msgs []domain.ChatMessage) error

	// SetTyping overwrites the typing slot; nil clears it.
	SetTyping(ctx context.Context, roomID string, marker *domain.TypingMarker) error

	SubscribeRoom(roomID string, onChange func(*domain.Room)) (docstore.UnsubscribeFunc, error)
	SubscribeRooms(onChange func([]domain.Room)) (docstore.UnsubscribeFunc, error)
}

type roomRepository struct {
	store docstore.Store
}

// NewDocRoomRepository create a RoomRepository on the document store
func NewDocRoomRepository(store docstore.Store) RoomRepository {
	return &roomRepository{store: store}
}

// CreateRoom insert the room document
func (r *roomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	return r.store.Create(ctx, roomsCollection, room.ID, room)
}

// FindByID fetch one room
func (r *roomRepository) FindByID(ctx context.Context, roomID string) (*domain.Room, error) {
	snap, err := r.store.Get(ctx, roomsCollection, roomID)
	if err != nil {
		return nil, err
	}
	return decodeRoom(snap)
}

// ListRooms fetch all rooms once, ordered by creation time
func (r *roomRepository) ListRooms(ctx context.Context) ([]domain.Room, error) {
	snaps, err := r.store.QueryAll(ctx, roomsCollection)
	if err != nil {
		return nil, err
	}
	return decodeRooms(snaps)
}

// AddMember union the identity into members and increment member_count
func (r *roomRepository) AddMember(ctx context.Context, roomID string, member domain.Identity) error {
	return r.store.UpdateFields(ctx, roomsCollection, roomID, docstore.Fields{
		"members":      docstore.Union(member),
		"member_count": docstore.Increment(1),
	})
}

// AppendMessage append one message to the log
func (r *roomRepository) AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) error {
	return r.store.UpdateFields(ctx, roomsCollection, roomID, docstore.Fields{
		"messages": docstore.Append(msg),
	})
}

// ReplaceMessages rewrite the message log whole
func (r *roomRepository) ReplaceMessages(ctx context.Context, roomID string, msgs []domain.ChatMessage) error {
	return r.store.UpdateFields(ctx, roomsCollection, roomID, docstore.Fields{
		"messages": msgs,
	})
}

// SetTyping overwrite the typing slot; nil clears it
func (r *roomRepository) SetTyping(ctx context.Context, roomID string, marker *domain.TypingMarker) error {
	return r.store.UpdateFields(ctx, roomsCollection, roomID, docstore.Fields{
		"typing": marker,
	})
}

// SubscribeRoom deliver the full room on every document change
func (r *roomRepository) SubscribeRoom(roomID string, onChange func(*domain.Room)) (docstore.UnsubscribeFunc, error) {
	return r.store.SubscribeDocument(roomsCollection, roomID, func(snap docstore.Snapshot) {
		if room, err := decodeRoom(snap); err == nil {
			onChange(room)
		}
	})
}

// SubscribeRooms deliver the full room set on every registry change
func (r *roomRepository) SubscribeRooms(onChange func([]domain.Room)) (docstore.UnsubscribeFunc, error) {
	return r.store.SubscribeCollection(roomsCollection, func(snaps []docstore.Snapshot) {
		if rooms, err := decodeRooms(snaps); err == nil {
			onChange(rooms)
		}
	})
}

func decodeRoom(snap docstore.Snapshot) (*domain.Room, error) {
	var room domain.Room
	if err := snap.Decode(&room); err != nil {
		return nil, err
	}
	return &room, nil
}

func decodeRooms(snaps []docstore.Snapshot) ([]domain.Room, error) {
	rooms := make([]domain.Room, 0, len(snaps))
	for _, snap := range snaps {
		var room domain.Room
		if err := snap.Decode(&room); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt != rooms[j].CreatedAt {
			return rooms[i].CreatedAt < rooms[j].CreatedAt
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}
