package http

import (
	"encoding/json"

	"github.com/ndelorme/salon-server/internal/gateway"
	"github.com/ndelorme/salon-server/internal/proto"
)

// dispatchInbound decodes one inbound frame, runs the matching gateway
// operation and returns the ack to answer with. A non-nil proto.Error means
// the payload was malformed; fatal means the session must terminate.
func dispatchInbound(gw *gateway.Gateway, client *gateway.Client, inbound proto.Inbound) (*proto.Ack, *proto.Error, bool, error) {
	switch inbound.Type {
	case proto.InboundTypeAuthenticate:
		var data proto.AuthData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, false, err
		}
		if data.Token == "" {
			return nil, badRequest("token is required"), false, nil
		}
		res := gw.Authenticate(client, data.Token)
		return ackFromResult(inbound.Type, res), nil, res.Status == gateway.StatusError, nil

	case proto.InboundTypeSetProfile:
		var declared string
		if err := json.Unmarshal(inbound.Data, &declared); err != nil {
			return nil, nil, false, err
		}
		res := gw.SetProfile(client, gateway.Role(declared))
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeRequestRooms:
		res := gw.RequestRooms(client)
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeCreateChat:
		var data proto.CreateChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, false, err
		}
		roles := make([]gateway.Role, 0, len(data.Roles))
		for _, role := range data.Roles {
			roles = append(roles, gateway.Role(role))
		}
		res := gw.CreateChat(client, data.Name, roles)
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeDeleteChat:
		var data proto.DeleteChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, false, err
		}
		res := gw.DeleteChat(client, data.Name)
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeSetName:
		var name string
		if err := json.Unmarshal(inbound.Data, &name); err != nil {
			return nil, nil, false, err
		}
		res := gw.SetName(client, name)
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeJoinRoom:
		var data proto.RoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, false, err
		}
		if data.Room == "" {
			return nil, badRequest("room is required"), false, nil
		}
		res := gw.JoinRoom(client, data.Room)
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeLeaveRoom:
		var data proto.RoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, false, err
		}
		if data.Room == "" {
			return nil, badRequest("room is required"), false, nil
		}
		res := gw.LeaveRoom(client, data.Room)
		return ackFromResult(inbound.Type, res), nil, false, nil

	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, false, err
		}
		if data.Room == "" {
			return nil, badRequest("room is required"), false, nil
		}
		res := gw.SendMessage(client, data.Room, data.Message)
		return ackFromResult(inbound.Type, res), nil, false, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, false, nil
	}
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: "bad_request", Msg: msg}
}

// ackFromResult converts a gateway result envelope to its wire shape.
func ackFromResult(op string, res gateway.Result) *proto.Ack {
	ack := &proto.Ack{
		Op:     op,
		Status: res.Status,
		Data:   res.Data,
		Room:   res.Room,
		Name:   res.Name,
	}
	if res.Chat != nil {
		room := roomFromInfo(*res.Chat)
		ack.Chat = &room
	}
	switch {
	case res.RoomInfos != nil:
		ack.Rooms = roomsFromInfos(res.RoomInfos)
	case res.RoomNames != nil:
		ack.Rooms = res.RoomNames
	}
	return ack
}

// outboundFromEvent converts a gateway event to its wire shape.
func outboundFromEvent(event *gateway.Event) proto.Outbound {
	switch event.Kind {
	case gateway.EventAuthSuccess:
		return eventOutbound(proto.EventAuthSuccess, proto.AuthSuccessData{
			Role:  string(event.Identity.Role),
			Email: event.Identity.Email,
		})
	case gateway.EventAuthError:
		return eventOutbound(proto.EventAuthError, proto.AuthErrorData{
			Message: event.Message,
		})
	case gateway.EventAvailableRooms:
		return eventOutbound(proto.EventAvailableRooms, event.RoomNames)
	case gateway.EventRoomsList:
		if event.Rooms != nil {
			return eventOutbound(proto.EventRoomsList, roomsFromInfos(event.Rooms))
		}
		return eventOutbound(proto.EventRoomsList, event.RoomNames)
	case gateway.EventRoomsUpdated:
		return eventOutbound(proto.EventRoomsUpdated, roomsFromInfos(event.Rooms))
	case gateway.EventSystemMessage:
		return eventOutbound(proto.EventSystemMessage, proto.SystemMessageData{
			Room:      event.Room,
			Message:   event.Message,
			Timestamp: event.Timestamp,
		})
	case gateway.EventNewMessage:
		return eventOutbound(proto.EventNewMessage, proto.NewMessageData{
			User:      event.User,
			Room:      event.Room,
			Message:   event.Message,
			Timestamp: event.Timestamp,
		})
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: name,
		Data:  data,
	}
}

func roomFromInfo(info gateway.RoomInfo) proto.Room {
	roles := make([]string, 0, len(info.Roles))
	for _, role := range info.Roles {
		roles = append(roles, string(role))
	}
	return proto.Room{Name: info.Name, Roles: roles}
}

func roomsFromInfos(infos []gateway.RoomInfo) []proto.Room {
	rooms := make([]proto.Room, 0, len(infos))
	for _, info := range infos {
		rooms = append(rooms, roomFromInfo(info))
	}
	return rooms
}
