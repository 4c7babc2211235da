package domain

import (
	"strings"
	"time"
)

// Visibility definition room visibility
type Visibility string

const (
	// VisibilityPublic anyone can join
	VisibilityPublic Visibility = "Public"
	// VisibilityPrivate join requires the room access key
	VisibilityPrivate Visibility = "Private"
)

// Identity is the identity reference issued by the auth collaborator.
// Immutable once issued; rooms hold it by value.
type Identity struct {
	ID          string `bson:"uid" json:"uid"`
	Email       string `bson:"email" json:"email"`
	DisplayName string `bson:"display_name" json:"display_name"`
}

// TypingExpiry is the window after which a typing marker is stale. Readers
// must ignore older markers even when the writer never cleared them.
const TypingExpiry = time.Second

// TypingMarker is the single ephemeral typing slot of a room. Last writer
// wins: a second typist silently overwrites the first.
type TypingMarker struct {
	UserID      string `bson:"user_id" json:"user_id"`
	DisplayName string `bson:"display_name" json:"display_name"`
	MarkedAt    int64  `bson:"marked_at" json:"marked_at"` // unix milliseconds
}

// Stale reports whether the marker is older than the expiry window. Tolerant
// of clock skew between writer and reader: staleness is judged against the
// reader's clock only.
func (t *TypingMarker) Stale(now time.Time) bool {
	if t == nil {
		return true
	}
	return now.UnixMilli()-t.MarkedAt > TypingExpiry.Milliseconds()
}

// Room is the aggregate document of one chat channel: metadata, membership,
// the embedded message log, and the ephemeral typing slot. Every mutation is
// a partial update of this one document.
type Room struct {
	ID          string        `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Visibility  Visibility    `bson:"visibility" json:"visibility"`
	AccessKey   string        `bson:"access_key,omitempty" json:"-"`
	Members     []Identity    `bson:"members" json:"members"`
	MemberCount int64         `bson:"member_count" json:"member_count"`
	Messages    []ChatMessage `bson:"messages" json:"messages"`
	Typing      *TypingMarker `bson:"typing,omitempty" json:"typing,omitempty"`
	CreatedAt   int64         `bson:"created_at" json:"created_at"`
}

// IsPrivate report whether joining requires the access key
func (r *Room) IsPrivate() bool {
	return r.Visibility == VisibilityPrivate
}

// HasMember report whether the identity already joined
func (r *Room) HasMember(identityID string) bool {
	for _, m := range r.Members {
		if m.ID == identityID {
			return true
		}
	}
	return false
}

// ActiveTyping returns the typing marker if it is still fresh, nil otherwise.
func (r *Room) ActiveTyping(now time.Time) *TypingMarker {
	if r.Typing.Stale(now) {
		return nil
	}
	return r.Typing
}

// FilterRooms case-insensitive substring match on the room name. Purely
// derived from an already-held snapshot; no store round trip.
func FilterRooms(rooms []Room, term string) []Room {
	if term == "" {
		return rooms
	}
	needle := strings.ToLower(term)
	var filtered []Room
	for _, room := range rooms {
		if strings.Contains(strings.ToLower(room.Name), needle) {
			filtered = append(filtered, room)
		}
	}
	return filtered
}
