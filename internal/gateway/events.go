package gateway

import "time"

// EventKind is a notification the gateway pushes to clients.
type EventKind int

const (
	// EventAuthSuccess confirms authentication with the attached identity.
	EventAuthSuccess EventKind = iota
	// EventAuthError reports a fatal authentication failure.
	EventAuthError
	// EventAvailableRooms pushes the rooms visible to the declared profile.
	EventAvailableRooms
	// EventRoomsList answers a rooms request; shape depends on the role.
	EventRoomsList
	// EventRoomsUpdated pushes the full directory after a create or delete.
	EventRoomsUpdated
	// EventSystemMessage is a server-generated notice scoped to a room.
	EventSystemMessage
	// EventNewMessage is a chat message broadcast to a room.
	EventNewMessage
)

// Event is pushed to clients over their event channel. Only the fields
// relevant to the Kind are set.
type Event struct {
	Kind      EventKind
	Identity  *Identity  // EventAuthSuccess
	Room      string     // system/chat messages
	User      string     // EventNewMessage sender display name
	Message   string     // notice or chat text, error message for EventAuthError
	Timestamp string     // cosmetic HH:MM, never used for ordering
	Rooms     []RoomInfo // EventRoomsUpdated, admin EventRoomsList
	RoomNames []string   // EventAvailableRooms, non-admin EventRoomsList
}

// clockStamp renders the cosmetic time-of-day carried on notices.
func clockStamp() string {
	return time.Now().Format("15:04")
}
