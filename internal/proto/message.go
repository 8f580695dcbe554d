package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeAuthenticate = "authenticate"
	InboundTypeSetProfile   = "setProfile"
	InboundTypeRequestRooms = "requestRooms"
	InboundTypeCreateChat   = "createChat"
	InboundTypeDeleteChat   = "deleteChat"
	InboundTypeSetName      = "setName"
	InboundTypeJoinRoom     = "joinRoom"
	InboundTypeLeaveRoom    = "leaveRoom"
	InboundTypeSendMessage  = "sendMessage"

	OutboundTypeAck   = "ack"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventAuthSuccess    = "authSuccess"
	EventAuthError      = "authError"
	EventAvailableRooms = "availableRooms"
	EventRoomsList      = "roomsList"
	EventRoomsUpdated   = "roomsUpdated"
	EventSystemMessage  = "systemMessage"
	EventNewMessage     = "newMessage"
)

// AuthData carries the credential for explicit post-connect authentication.
type AuthData struct {
	Token string `json:"token"`
}

// CreateChatData requests a new room with its allowed roles.
type CreateChatData struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// DeleteChatData names the room to delete.
type DeleteChatData struct {
	Name string `json:"name"`
}

// RoomData addresses a single room for join and leave.
type RoomData struct {
	Room string `json:"room"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Ack is the status envelope answering one inbound operation, independent of
// any broadcast it triggered. Rooms holds either plain names or Room entries
// depending on the operation and the caller's role.
type Ack struct {
	Op     string `json:"op"`
	Status string `json:"status"`
	Data   string `json:"data,omitempty"`
	Rooms  any    `json:"rooms,omitempty"`
	Chat   *Room  `json:"chat,omitempty"`
	Room   string `json:"room,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Room is a directory entry on the wire.
type Room struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// AuthSuccessData confirms authentication.
type AuthSuccessData struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

// AuthErrorData reports a fatal authentication failure.
type AuthErrorData struct {
	Message string `json:"message"`
}

// SystemMessageData is a server notice scoped to a room.
type SystemMessageData struct {
	Room      string `json:"room"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewMessageData is a chat message broadcast to a room.
type NewMessageData struct {
	User      string `json:"user"`
	Room      string `json:"room"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
