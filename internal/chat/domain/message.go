package domain

import "room_chat_service/pkg"

// ChatMessage is one entry of a room's append-only message log. Immutable
// after append except for SeenBy, which only ever grows.
type ChatMessage struct {
	ID       string   `bson:"id" json:"id"`
	SenderID string   `bson:"sender_id" json:"sender_id"`
	Content  string   `bson:"content" json:"content"`
	SentAt   int64    `bson:"sent_at" json:"sent_at"` // unix milliseconds, sender clock
	SeenBy   []string `bson:"seen_by,omitempty" json:"seen_by,omitempty"`
}

// SeenByUser report whether the identity already saw this message
func (m *ChatMessage) SeenByUser(identityID string) bool {
	return pkg.Contains(m.SeenBy, identityID)
}

// GroupMessages folds the ordered log into runs of consecutive messages from
// the same sender. Pure function of the input: a group boundary occurs
// exactly where sender_id changes from the previous message.
func GroupMessages(messages []ChatMessage) [][]ChatMessage {
	var grouped [][]ChatMessage
	var current []ChatMessage

	for _, msg := range messages {
		if len(current) > 0 && msg.SenderID != current[0].SenderID {
			grouped = append(grouped, current)
			current = nil
		}
		current = append(current, msg)
	}
	if len(current) > 0 {
		grouped = append(grouped, current)
	}

	return grouped
}
