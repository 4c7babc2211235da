package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoom_HasMember(t *testing.T) {
	room := Room{Members: []Identity{
		{ID: "u1", DisplayName: "Alice"},
		{ID: "u2", DisplayName: "Bob"},
	}}

	assert.True(t, room.HasMember("u1"))
	assert.True(t, room.HasMember("u2"))
	assert.False(t, room.HasMember("u3"))

	empty := Room{}
	assert.False(t, empty.HasMember("u1"))
}

func TestRoom_IsPrivate(t *testing.T) {
	assert.True(t, (&Room{Visibility: VisibilityPrivate}).IsPrivate())
	assert.False(t, (&Room{Visibility: VisibilityPublic}).IsPrivate())
}

func TestFilterRooms(t *testing.T) {
	rooms := []Room{
		{ID: "r1", Name: "general"},
		{ID: "r2", Name: "General Discussion"},
		{ID: "r3", Name: "random"},
		{ID: "r4", Name: "GENERAL-2"},
	}

	t.Run("case-insensitive substring", func(t *testing.T) {
		found := FilterRooms(rooms, "general")
		assert.Len(t, found, 3)

		found = FilterRooms(rooms, "GeNeRaL")
		assert.Len(t, found, 3)
	})

	t.Run("substring in the middle", func(t *testing.T) {
		found := FilterRooms(rooms, "discus")
		assert.Len(t, found, 1)
		assert.Equal(t, "r2", found[0].ID)
	})

	t.Run("empty term returns the input unchanged", func(t *testing.T) {
		assert.Equal(t, rooms, FilterRooms(rooms, ""))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterRooms(rooms, "missing"))
	})
}
