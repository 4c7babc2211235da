package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupMessages(t *testing.T) {
	t.Run("consecutive same-sender runs", func(t *testing.T) {
		messages := []ChatMessage{
			{ID: "m1", SenderID: "u1"},
			{ID: "m2", SenderID: "u1"},
			{ID: "m3", SenderID: "u2"},
			{ID: "m4", SenderID: "u1"},
			{ID: "m5", SenderID: "u1"},
			{ID: "m6", SenderID: "u1"},
		}

		grouped := GroupMessages(messages)

		assert.Len(t, grouped, 3)
		assert.Len(t, grouped[0], 2)
		assert.Len(t, grouped[1], 1)
		assert.Len(t, grouped[2], 3)
		assert.Equal(t, "m1", grouped[0][0].ID)
		assert.Equal(t, "m3", grouped[1][0].ID)
		assert.Equal(t, "m6", grouped[2][2].ID)
	})

	t.Run("a boundary occurs exactly where the sender changes", func(t *testing.T) {
		messages := []ChatMessage{
			{ID: "m1", SenderID: "u1"},
			{ID: "m2", SenderID: "u2"},
			{ID: "m3", SenderID: "u1"},
		}

		grouped := GroupMessages(messages)

		// same sender in non-adjacent positions stays in separate groups
		assert.Len(t, grouped, 3)
	})

	t.Run("deterministic on the same input", func(t *testing.T) {
		messages := []ChatMessage{
			{ID: "m1", SenderID: "u1"},
			{ID: "m2", SenderID: "u2"},
			{ID: "m3", SenderID: "u2"},
		}

		assert.Equal(t, GroupMessages(messages), GroupMessages(messages))
	})

	t.Run("empty log", func(t *testing.T) {
		assert.Empty(t, GroupMessages(nil))
		assert.Empty(t, GroupMessages([]ChatMessage{}))
	})

	t.Run("single message", func(t *testing.T) {
		grouped := GroupMessages([]ChatMessage{{ID: "m1", SenderID: "u1"}})
		assert.Len(t, grouped, 1)
		assert.Len(t, grouped[0], 1)
	})
}

func TestChatMessage_SeenByUser(t *testing.T) {
	msg := ChatMessage{ID: "m1", SenderID: "u1", SeenBy: []string{"u2", "u3"}}

	assert.True(t, msg.SeenByUser("u2"))
	assert.True(t, msg.SeenByUser("u3"))
	assert.False(t, msg.SeenByUser("u1"))
	assert.False(t, msg.SeenByUser("u4"))

	empty := ChatMessage{ID: "m2", SenderID: "u1"}
	assert.False(t, empty.SeenByUser("u2"))
}
