package domain

// Action websocket request action
type Action string

const (
	// CreateRoom websocket action create_room
	CreateRoom Action = "create_room"
	// ListRooms websocket action list_rooms
	ListRooms Action = "list_rooms"
	// SearchRooms websocket action search_rooms
	SearchRooms Action = "search_rooms"

	// JoinRoom websocket action join_room
	JoinRoom Action = "join_room"
	// EnterRoom websocket action enter_room
	EnterRoom Action = "enter_room"
	// LeaveRoom websocket action leave_room
	LeaveRoom Action = "leave_room"
	// GetMembers websocket action get_members
	GetMembers Action = "get_members"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// MarkSeen websocket action mark_seen
	MarkSeen Action = "mark_seen"
	// SetTyping websocket action set_typing
	SetTyping Action = "set_typing"

	// RoomUpdate pushed when a subscribed room document changed
	RoomUpdate Action = "room_update"
	// RoomsUpdate pushed when the room registry changed
	RoomsUpdate Action = "rooms_update"
)

// WSRequest websocket Request
type WSRequest struct {
	Action     string `json:"action"`
	RoomID     string `json:"room_id"`
	RoomName   string `json:"room_name"`
	Visibility string `json:"visibility"`
	AccessKey  string `json:"access_key"`
	Content    string `json:"content"`
	Term       string `json:"term"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
