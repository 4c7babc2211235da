package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"room_chat_service/internal/chat/domain"
	"room_chat_service/internal/chat/repository"
	"room_chat_service/pkg/logger"
	"room_chat_service/pkg/middlewares"
)

// ChatWebsocketHandler dispatches websocket actions to the use cases and owns
// the per-connection sync session.
type ChatWebsocketHandler struct {
	roomUC    *RoomUseCase
	messageUC *MessageUseCase
	typingUC  *TypingUseCase
	roomRepo  repository.RoomRepository
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	roomUC *RoomUseCase,
	messageUC *MessageUseCase,
	typingUC *TypingUseCase,
	roomRepo repository.RoomRepository,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		roomUC:    roomUC,
		messageUC: messageUC,
		typingUC:  typingUC,
		roomRepo:  roomRepo,
	}
}

// HandleConnection is the entry point of one websocket connection. It runs
// until the client disconnects; every subscription opened on behalf of this
// client dies with the connection.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	identity := domain.Identity{
		ID:          localString(conn, middlewares.TokenIdentityID),
		DisplayName: localString(conn, middlewares.TokenDisplayName),
		Email:       localString(conn, middlewares.TokenEmail),
	}
	logger.Log.Info("websocket connected", zap.String("IdentityID", identity.ID))

	session := NewSyncSession(h.roomRepo)

	// write serialization: snapshot callbacks and the read loop both write
	var writeMu sync.Mutex
	send := func(resp domain.WSResponse) {
		b, _ := json.Marshal(resp)
		writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, b)
		writeMu.Unlock()
		if err != nil {
			logger.Log.Errorf("write message error:", err)
		}
	}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		session.Close()
		logger.Log.Info("websocket closed", zap.String("IdentityID", identity.ID))
		conn.Close()
		cancel()
	}()

	// fiber handles close/ping/pong frames itself; the handlers only log
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("websocket close frame:", conn.RemoteAddr())
		return nil
	})
	conn.SetPongHandler(func(appData string) error {
		return nil
	})
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	go func() {
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, []byte("ping"))
				writeMu.Unlock()
				if err != nil {
					logger.Log.Errorf("ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			send(domain.WSResponse{Action: "error", Error: "unknown message type"})
			continue
		}
		h.textMessageAction(ctx, identity, session, send, message)
	}
}

func (h *ChatWebsocketHandler) textMessageAction(
	ctx context.Context,
	identity domain.Identity,
	session *SyncSession,
	send func(domain.WSResponse),
	msg []byte,
) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		send(domain.WSResponse{Action: "error", Error: "malformed request"})
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch domain.Action(req.Action) {
	case domain.CreateRoom:
		room, err := h.roomUC.CreateRoom(ctx, req.RoomName, req.Visibility, identity)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room"] = room
			// the creator is the only one who ever sees the key
			if room.IsPrivate() {
				resp.Payload["access_key"] = room.AccessKey
			}
		}

	case domain.ListRooms:
		// live registry subscription: an initial rooms_update arrives right
		// away, then one per registry change until the connection dies
		err := session.SubscribeRegistry(func(rooms []domain.Room) {
			send(domain.WSResponse{
				Action:  string(domain.RoomsUpdate),
				Success: true,
				Payload: map[string]interface{}{"rooms": rooms},
			})
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	case domain.SearchRooms:
		rooms, err := h.roomUC.SearchRooms(ctx, req.Term)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["rooms"] = rooms
		}

	case domain.JoinRoom:
		err := h.roomUC.JoinRoom(ctx, req.RoomID, identity, req.AccessKey)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room_id"] = req.RoomID
		}

	case domain.EnterRoom:
		err := session.SubscribeRoom(req.RoomID, func(room *domain.Room) {
			send(h.roomUpdate(room))
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room_id"] = req.RoomID
		}

	case domain.LeaveRoom:
		// tears down the sync only; membership is untouched
		session.UnsubscribeRoom(req.RoomID)
		resp.Success = true
		resp.Payload["room_id"] = req.RoomID

	case domain.GetMembers:
		members, err := h.roomUC.GetMembers(ctx, req.RoomID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["members"] = members
		}

	case domain.SendMessage:
		sent, err := h.messageUC.Send(ctx, req.RoomID, identity, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			if sent != nil {
				resp.Payload["message_id"] = sent.ID
			}
		}

	case domain.MarkSeen:
		err := h.messageUC.MarkSeen(ctx, req.RoomID, identity.ID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	case domain.SetTyping:
		err := h.typingUC.SetTyping(ctx, req.RoomID, identity)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	default:
		resp.Action = "error"
		resp.Error = "unknown action"
	}

	if resp.Error != "" {
		logger.Log.Error("websocket action failed",
			zap.String("IdentityID", identity.ID),
			zap.String("Action", req.Action),
			zap.String("err", resp.Error))
	}
	send(resp)
}

// roomUpdate builds the pushed snapshot of one room: the room itself, the
// message log grouped by consecutive sender, and the typing marker filtered
// through the staleness window on this node's clock.
func (h *ChatWebsocketHandler) roomUpdate(room *domain.Room) domain.WSResponse {
	payload := map[string]interface{}{
		"room":           room,
		"message_groups": domain.GroupMessages(room.Messages),
	}
	if typing := room.ActiveTyping(time.Now()); typing != nil {
		payload["typing"] = typing
	}
	return domain.WSResponse{
		Action:  string(domain.RoomUpdate),
		Success: true,
		Payload: payload,
	}
}

func localString(conn *websocket.Conn, key string) string {
	if v, ok := conn.Locals(key).(string); ok {
		return v
	}
	return ""
}
