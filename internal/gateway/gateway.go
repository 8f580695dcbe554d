package gateway

import (
	"sync"

	"github.com/rs/zerolog"
)

// Statuses carried in result envelopes.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusSent  = "sent"
	StatusLeft  = "left"
)

// Result is the synchronous status envelope returned to the caller of an
// operation, independent of any broadcast the operation triggered. Only the
// fields relevant to the operation are set.
type Result struct {
	Status    string
	Data      string
	Chat      *RoomInfo
	Room      string
	Name      string
	RoomInfos []RoomInfo
	RoomNames []string
	Err       *Error
}

func okResult(data string) Result {
	return Result{Status: StatusOK, Data: data}
}

func errorResult(err *Error) Result {
	return Result{Status: StatusError, Data: err.Message, Err: err}
}

// Gateway orchestrates connection lifecycle, authorization and room fan-out.
// The registry and directory are injected so each can be exercised in
// isolation; the gateway itself owns the membership tables.
type Gateway struct {
	registry *Registry
	dir      *Directory
	verifier TokenVerifier
	log      *zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	members map[string]map[*Client]struct{}
}

// New constructs a gateway over the given registry, directory and verifier.
func New(registry *Registry, dir *Directory, verifier TokenVerifier, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		dir:      dir,
		verifier: verifier,
		log:      logger,
		clients:  make(map[string]*Client),
		members:  make(map[string]map[*Client]struct{}),
	}
}

// Connect registers the connection and, when a handshake token is supplied,
// authenticates it immediately. Returns false when authentication failed and
// the caller must terminate the connection.
func (g *Gateway) Connect(c *Client, token string) bool {
	g.registry.Register(c.ID)

	g.mu.Lock()
	g.clients[c.ID] = c
	g.mu.Unlock()

	if token == "" {
		return true
	}
	return g.Authenticate(c, token).Status == StatusOK
}

// Authenticate verifies the token and attaches the resulting identity.
// The connection is notified with authSuccess or authError; a failure is
// fatal for the session and the caller must close the connection after the
// authError event has been delivered.
func (g *Gateway) Authenticate(c *Client, token string) Result {
	identity, err := g.verifier.Verify(token)
	if err != nil {
		g.log.Debug().Err(err).Str("client_id", c.ID).Msg("token verification failed")
		g.deliver(c, &Event{Kind: EventAuthError, Message: ErrAuthFailed.Message})
		return errorResult(ErrAuthFailed)
	}

	g.registry.AttachIdentity(c.ID, identity)
	g.deliver(c, &Event{Kind: EventAuthSuccess, Identity: &identity})
	return okResult("Authentifié")
}

// SetProfile records the active profile. The declared profile must equal the
// authenticated role; this is a strict equality check, not a subset check.
func (g *Gateway) SetProfile(c *Client, declared Role) Result {
	identity, ok := g.registry.IdentityOf(c.ID)
	if !ok {
		return errorResult(ErrUnauthenticated)
	}
	if declared != identity.Role {
		return errorResult(ErrProfileMismatch)
	}

	g.registry.SetProfile(c.ID, declared)
	rooms := g.dir.VisibleTo(declared)
	g.deliver(c, &Event{Kind: EventAvailableRooms, RoomNames: rooms})

	res := okResult("Profil " + string(declared) + " défini")
	res.RoomNames = rooms
	return res
}

// RequestRooms lists the directory. Admins get every room with its allowed
// roles; everyone else gets the names of rooms open to the user role. The
// non-admin filter is for the user role itself, not the caller's profile.
func (g *Gateway) RequestRooms(c *Client) Result {
	identity, ok := g.registry.IdentityOf(c.ID)
	if !ok {
		return errorResult(ErrUnauthenticated)
	}

	if identity.Role == RoleAdmin {
		list := g.dir.List()
		g.deliver(c, &Event{Kind: EventRoomsList, Rooms: list})
		res := okResult("")
		res.RoomInfos = list
		return res
	}

	names := g.dir.VisibleTo(RoleUser)
	g.deliver(c, &Event{Kind: EventRoomsList, RoomNames: names})
	res := okResult("")
	res.RoomNames = names
	return res
}

// CreateChat adds a room to the directory and pushes the refreshed listing
// to every connected client.
func (g *Gateway) CreateChat(c *Client, name string, roles []Role) Result {
	room, err := g.dir.Create(name, roles, g.requesterRole(c))
	if err != nil {
		return errorResult(asGatewayError(err))
	}

	g.log.Info().Str("room", room.Name).Msg("room created")
	g.broadcastRooms()

	res := okResult("Chat créé")
	res.Chat = &room
	return res
}

// DeleteChat removes a room, evicts it from every connection's membership
// set and pushes the refreshed listing to every connected client.
func (g *Gateway) DeleteChat(c *Client, name string) Result {
	if err := g.dir.Delete(name, g.requesterRole(c)); err != nil {
		return errorResult(asGatewayError(err))
	}

	g.mu.Lock()
	if set, ok := g.members[name]; ok {
		for member := range set {
			delete(member.rooms, name)
		}
		delete(g.members, name)
	}
	g.mu.Unlock()

	g.log.Info().Str("room", name).Msg("room deleted")
	g.broadcastRooms()

	res := okResult("Chat supprimé")
	res.Name = name
	return res
}

// SetName stores the display name and announces the arrival in the lobby.
// No authentication is required: any connection may set a name.
func (g *Gateway) SetName(c *Client, name string) Result {
	g.registry.SetDisplayName(c.ID, name)
	g.broadcastRoom(LobbyRoom, &Event{
		Kind:      EventSystemMessage,
		Room:      LobbyRoom,
		Message:   name + " a rejoint le serveur.",
		Timestamp: clockStamp(),
	})
	return okResult("pseudo enregistré")
}

// JoinRoom adds the room to the connection's membership set. Allowed roles
// are not re-checked here: once a client knows a room name, joining is
// permissive.
func (g *Gateway) JoinRoom(c *Client, room string) Result {
	g.mu.Lock()
	set, ok := g.members[room]
	if !ok {
		set = make(map[*Client]struct{})
		g.members[room] = set
	}
	set[c] = struct{}{}
	c.rooms[room] = struct{}{}
	g.mu.Unlock()

	pseudo := g.registry.DisplayNameOf(c.ID)
	g.broadcastRoom(room, &Event{
		Kind:      EventSystemMessage,
		Room:      room,
		Message:   "L'utilisateur " + pseudo + " a rejoint la room " + room,
		Timestamp: clockStamp(),
	})

	res := okResult("")
	res.Room = room
	return res
}

// LeaveRoom removes the membership and notifies the remaining members with
// an anonymous notice. Leaving a room twice is a no-op, not an error.
func (g *Gateway) LeaveRoom(c *Client, room string) Result {
	g.mu.Lock()
	if set, ok := g.members[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(g.members, room)
		}
	}
	delete(c.rooms, room)
	g.mu.Unlock()

	g.broadcastRoom(room, &Event{
		Kind:      EventSystemMessage,
		Room:      room,
		Message:   "Un utilisateur a quitté la room " + room,
		Timestamp: clockStamp(),
	})

	return Result{Status: StatusLeft, Room: room}
}

// SendMessage broadcasts a chat message to every current member of the room.
// Membership of the sender is not checked.
func (g *Gateway) SendMessage(c *Client, room, text string) Result {
	g.broadcastRoom(room, &Event{
		Kind:      EventNewMessage,
		Room:      room,
		User:      g.registry.DisplayNameOf(c.ID),
		Message:   text,
		Timestamp: clockStamp(),
	})
	return Result{Status: StatusSent}
}

// Disconnect atomically removes the connection from every room and purges
// its registry entry. No broadcast targets the client afterwards; operations
// racing a completed disconnect degrade to no-ops.
func (g *Gateway) Disconnect(c *Client) {
	g.mu.Lock()
	for room := range c.rooms {
		if set, ok := g.members[room]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(g.members, room)
			}
		}
	}
	c.rooms = make(map[string]struct{})
	delete(g.clients, c.ID)
	g.mu.Unlock()

	g.registry.Remove(c.ID)
}

// requesterRole resolves the authenticated role of the connection; an absent
// identity yields an empty role, which fails every privilege check.
func (g *Gateway) requesterRole(c *Client) Role {
	identity, ok := g.registry.IdentityOf(c.ID)
	if !ok {
		return ""
	}
	return identity.Role
}

// broadcastRooms pushes the full refreshed directory to every connected
// client, members or not.
func (g *Gateway) broadcastRooms() {
	list := g.dir.List()
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, client := range g.clients {
		g.deliver(client, &Event{Kind: EventRoomsUpdated, Rooms: list})
	}
}

// broadcastRoom delivers the event to the member set as it stands at send
// time. The lock guarantees the snapshot is never torn by a concurrent join,
// leave or disconnect.
func (g *Gateway) broadcastRoom(room string, event *Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for client := range g.members[room] {
		g.deliver(client, event)
	}
}

func (g *Gateway) deliver(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}

func asGatewayError(err error) *Error {
	if gerr, ok := err.(*Error); ok {
		return gerr
	}
	return gatewayError("internal", err.Error())
}
