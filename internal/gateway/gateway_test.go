package gateway

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func connect(t *testing.T, g *Gateway, id, token string) *Client {
	t.Helper()
	c := NewClient(id)
	if ok := g.Connect(c, token); !ok {
		t.Fatalf("connect %s: authentication failed", id)
	}
	return c
}

func TestConnectWithValidToken(t *testing.T) {
	g := newTestGateway()

	c := connect(t, g, "a", "admin-token")

	ev := mustEvent(t, c.Events, EventAuthSuccess)
	if ev.Identity == nil || ev.Identity.Role != RoleAdmin || ev.Identity.Email != "admin@example.com" {
		t.Fatalf("unexpected authSuccess: %+v", ev)
	}

	identity, ok := g.registry.IdentityOf("a")
	if !ok || identity.Role != RoleAdmin {
		t.Fatalf("identity not attached: %+v ok=%v", identity, ok)
	}
}

func TestConnectWithInvalidToken(t *testing.T) {
	g := newTestGateway()

	c := NewClient("a")
	if ok := g.Connect(c, "garbage"); ok {
		t.Fatal("connect with invalid token should fail")
	}

	ev := mustEvent(t, c.Events, EventAuthError)
	if ev.Message != "Token invalide" {
		t.Fatalf("unexpected authError message: %q", ev.Message)
	}

	// The transport terminates the session after a failed handshake.
	g.Disconnect(c)
	if _, ok := g.registry.IdentityOf("a"); ok {
		t.Fatal("no registry entry may remain after the terminated session")
	}
}

func TestConnectWithoutTokenStaysUnauthenticated(t *testing.T) {
	g := newTestGateway()

	c := connect(t, g, "a", "")
	if res := g.RequestRooms(c); res.Status != StatusError || res.Data != "Non authentifié" {
		t.Fatalf("unauthenticated request should fail, got %+v", res)
	}
}

func TestSetProfile(t *testing.T) {
	g := newTestGateway()

	anon := connect(t, g, "anon", "")
	if res := g.SetProfile(anon, RoleUser); res.Err != ErrUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %+v", res)
	}

	user := connect(t, g, "u", "user-token")
	if res := g.SetProfile(user, RoleAdmin); res.Err != ErrProfileMismatch {
		t.Fatalf("declared profile must equal the authenticated role, got %+v", res)
	}

	res := g.SetProfile(user, RoleUser)
	if res.Status != StatusOK {
		t.Fatalf("setProfile failed: %+v", res)
	}
	if !reflect.DeepEqual(res.RoomNames, []string{LobbyRoom}) {
		t.Fatalf("user profile should only see the lobby, got %v", res.RoomNames)
	}

	ev := mustEvent(t, user.Events, EventAvailableRooms)
	if !reflect.DeepEqual(ev.RoomNames, []string{LobbyRoom}) {
		t.Fatalf("unexpected availableRooms push: %v", ev.RoomNames)
	}
}

func TestRequestRoomsFiltersByRole(t *testing.T) {
	g := newTestGateway()

	admin := connect(t, g, "a", "admin-token")
	user := connect(t, g, "u", "user-token")

	res := g.RequestRooms(admin)
	if res.Status != StatusOK || len(res.RoomInfos) != 2 {
		t.Fatalf("admin should see every room with roles, got %+v", res)
	}

	res = g.RequestRooms(user)
	if res.Status != StatusOK || !reflect.DeepEqual(res.RoomNames, []string{LobbyRoom}) {
		t.Fatalf("user listing should exclude admin-only rooms, got %+v", res)
	}

	ev := mustEvent(t, user.Events, EventRoomsList)
	if !reflect.DeepEqual(ev.RoomNames, []string{LobbyRoom}) {
		t.Fatalf("unexpected roomsList push: %v", ev.RoomNames)
	}
}

func TestCreateChatBroadcastsToEveryClient(t *testing.T) {
	g := newTestGateway()

	admin := connect(t, g, "a", "admin-token")
	user := connect(t, g, "u", "user-token")
	drainEvents(admin)
	drainEvents(user)

	res := g.CreateChat(admin, "ops", []Role{RoleAdmin})
	if res.Status != StatusOK || res.Chat == nil || res.Chat.Name != "ops" {
		t.Fatalf("unexpected create result: %+v", res)
	}
	if !reflect.DeepEqual(res.Chat.Roles, []Role{RoleAdmin}) {
		t.Fatalf("unexpected chat roles: %v", res.Chat.Roles)
	}

	// Every connected client receives the refreshed listing, members or not.
	for _, c := range []*Client{admin, user} {
		ev := mustEvent(t, c.Events, EventRoomsUpdated)
		if len(ev.Rooms) != 3 || ev.Rooms[2].Name != "ops" {
			t.Fatalf("roomsUpdated should carry the full listing, got %+v", ev.Rooms)
		}
	}

	// The admin-only room stays invisible to the user listing.
	listing := g.RequestRooms(user)
	if !reflect.DeepEqual(listing.RoomNames, []string{LobbyRoom}) {
		t.Fatalf("user must not see ops, got %v", listing.RoomNames)
	}
}

func TestCreateChatAuthorization(t *testing.T) {
	g := newTestGateway()

	anon := connect(t, g, "anon", "")
	if res := g.CreateChat(anon, "ops", nil); res.Err != ErrUnauthorized {
		t.Fatalf("anonymous create should be unauthorized, got %+v", res)
	}

	user := connect(t, g, "u", "user-token")
	if res := g.CreateChat(user, "ops", nil); res.Err != ErrUnauthorized {
		t.Fatalf("user create should be unauthorized, got %+v", res)
	}

	admin := connect(t, g, "a", "admin-token")
	if res := g.CreateChat(admin, "  ", nil); res.Err != ErrInvalidName {
		t.Fatalf("expected InvalidName, got %+v", res)
	}
	if res := g.CreateChat(admin, "ops", nil); res.Status != StatusOK {
		t.Fatalf("create failed: %+v", res)
	}
	if res := g.CreateChat(admin, "ops", nil); res.Err != ErrAlreadyExists {
		t.Fatalf("duplicate create should fail, got %+v", res)
	}
}

func TestDeleteLobbyForbidden(t *testing.T) {
	g := newTestGateway()
	admin := connect(t, g, "a", "admin-token")

	before := g.dir.List()
	res := g.DeleteChat(admin, LobbyRoom)
	if res.Status != StatusError || res.Data != "Suppression interdite" {
		t.Fatalf("expected Suppression interdite, got %+v", res)
	}
	if got := g.dir.List(); !reflect.DeepEqual(got, before) {
		t.Fatalf("directory must be unchanged, got %v", got)
	}
}

func TestDeleteChatEvictsMembers(t *testing.T) {
	g := newTestGateway()

	admin := connect(t, g, "a", "admin-token")
	user := connect(t, g, "u", "user-token")

	if res := g.CreateChat(admin, "ops", []Role{RoleAdmin, RoleUser}); res.Status != StatusOK {
		t.Fatalf("create failed: %+v", res)
	}
	g.JoinRoom(user, "ops")
	drainEvents(user)

	if res := g.DeleteChat(admin, "ops"); res.Status != StatusOK || res.Name != "ops" {
		t.Fatalf("delete failed: %+v", res)
	}

	// Membership was evicted: a later broadcast reaches nobody.
	g.SendMessage(admin, "ops", "anyone there?")
	mustEvent(t, user.Events, EventRoomsUpdated)
	mustNoEvent(t, user.Events, EventNewMessage)
}

func TestJoinLeaveIdempotent(t *testing.T) {
	g := newTestGateway()

	a := connect(t, g, "a", "user-token")
	b := connect(t, g, "b", "user-token")
	drainEvents(a)
	drainEvents(b)

	if res := g.JoinRoom(a, "general"); res.Status != StatusOK || res.Room != "general" {
		t.Fatalf("join failed: %+v", res)
	}
	g.JoinRoom(b, "general")

	// The joiner sees its own join notice too.
	ev := mustEvent(t, b.Events, EventSystemMessage)
	if ev.Room != "general" {
		t.Fatalf("unexpected join notice: %+v", ev)
	}

	if res := g.LeaveRoom(a, "general"); res.Status != StatusLeft {
		t.Fatalf("leave failed: %+v", res)
	}
	// Leaving twice is a no-op, not an error.
	if res := g.LeaveRoom(a, "general"); res.Status != StatusLeft {
		t.Fatalf("second leave should still answer left, got %+v", res)
	}

	// The departure notice is anonymous.
	drainEvents(b)
	g.LeaveRoom(b, "general")

	// a is no longer a member and receives nothing.
	drainEvents(a)
	g.SendMessage(b, "general", "hello?")
	mustNoEvent(t, a.Events, EventNewMessage)
}

func TestSendMessageFanOut(t *testing.T) {
	g := newTestGateway()

	a := connect(t, g, "a", "user-token")
	b := connect(t, g, "b", "user-token")
	c := connect(t, g, "c", "user-token")

	g.SetName(a, "alice")
	g.JoinRoom(a, "general")
	g.JoinRoom(b, "general")
	drainEvents(a)
	drainEvents(b)
	drainEvents(c)

	if res := g.SendMessage(a, "general", "hi"); res.Status != StatusSent {
		t.Fatalf("send failed: %+v", res)
	}

	for _, member := range []*Client{a, b} {
		ev := mustEvent(t, member.Events, EventNewMessage)
		if ev.User != "alice" || ev.Room != "general" || ev.Message != "hi" {
			t.Fatalf("unexpected message event: %+v", ev)
		}
		if ev.Timestamp == "" {
			t.Fatal("message should carry a timestamp")
		}
	}
	mustNoEvent(t, c.Events, EventNewMessage)
}

func TestSetNameAnnouncesInLobby(t *testing.T) {
	g := newTestGateway()

	watcher := connect(t, g, "w", "user-token")
	g.JoinRoom(watcher, LobbyRoom)
	drainEvents(watcher)

	// Setting a name requires no authentication at all.
	anon := connect(t, g, "anon", "")
	if res := g.SetName(anon, "ghost"); res.Status != StatusOK || res.Data != "pseudo enregistré" {
		t.Fatalf("setName failed: %+v", res)
	}

	ev := mustEvent(t, watcher.Events, EventSystemMessage)
	if ev.Room != LobbyRoom || ev.Message != "ghost a rejoint le serveur." {
		t.Fatalf("unexpected lobby notice: %+v", ev)
	}
}

func TestDisconnectStopsBroadcasts(t *testing.T) {
	g := newTestGateway()

	a := connect(t, g, "a", "user-token")
	b := connect(t, g, "b", "user-token")
	g.JoinRoom(a, "general")
	g.JoinRoom(b, "general")
	drainEvents(a)

	g.Disconnect(a)

	g.SendMessage(b, "general", "still there?")
	mustNoEvent(t, a.Events, EventNewMessage)

	// Operations racing a completed disconnect degrade to no-ops.
	if res := g.LeaveRoom(a, "general"); res.Status != StatusLeft {
		t.Fatalf("post-disconnect leave should be a harmless no-op, got %+v", res)
	}
}

func TestConcurrentCreateSameName(t *testing.T) {
	g := newTestGateway()

	const workers = 8
	clients := make([]*Client, workers)
	for i := range clients {
		clients[i] = connect(t, g, fmt.Sprintf("admin-%d", i), "admin-token")
	}

	results := make([]Result, workers)
	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c *Client) {
			defer wg.Done()
			results[i] = g.CreateChat(c, "ops", []Role{RoleAdmin})
		}(i, c)
	}
	wg.Wait()

	var okCount, existsCount int
	for _, res := range results {
		switch {
		case res.Status == StatusOK:
			okCount++
		case res.Err == ErrAlreadyExists:
			existsCount++
		default:
			t.Fatalf("unexpected result: %+v", res)
		}
	}
	if okCount != 1 || existsCount != workers-1 {
		t.Fatalf("exactly one create must win: ok=%d exists=%d", okCount, existsCount)
	}

	var seen int
	for _, room := range g.dir.List() {
		if room.Name == "ops" {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("directory must hold exactly one ops room, found %d", seen)
	}
}
