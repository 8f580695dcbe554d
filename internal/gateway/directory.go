package gateway

import (
	"strings"
	"sync"
)

// LobbyRoom always exists and can never be deleted.
const LobbyRoom = "lobby"

// RoomInfo is one directory entry as exposed to clients.
type RoomInfo struct {
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

// Directory is the canonical list of rooms and the roles allowed to see and
// join each of them. Listing order is insertion order so clients render a
// stable directory.
type Directory struct {
	mu    sync.RWMutex
	order []string
	rooms map[string][]Role
}

// NewDirectory seeds the directory with the lobby and an admin-only support
// room.
func NewDirectory() *Directory {
	d := &Directory{
		rooms: make(map[string][]Role),
	}
	d.insert(LobbyRoom, []Role{RoleAdmin, RoleUser})
	d.insert("support", []Role{RoleAdmin})
	return d
}

func (d *Directory) insert(name string, roles []Role) {
	d.order = append(d.order, name)
	d.rooms[name] = roles
}

// List returns every room with its allowed roles, in insertion order.
func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]RoomInfo, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, RoomInfo{Name: name, Roles: append([]Role(nil), d.rooms[name]...)})
	}
	return out
}

// VisibleTo returns the names of rooms whose allowed roles contain role, in
// insertion order.
func (d *Directory) VisibleTo(role Role) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.order))
	for _, name := range d.order {
		if containsRole(d.rooms[name], role) {
			out = append(out, name)
		}
	}
	return out
}

// Create adds a room. Only admins may create rooms; an empty allowed-role
// set defaults to {user}. Duplicate names fail without mutation.
func (d *Directory) Create(name string, roles []Role, requester Role) (RoomInfo, error) {
	if requester != RoleAdmin {
		return RoomInfo{}, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return RoomInfo{}, ErrInvalidName
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.rooms[name]; exists {
		return RoomInfo{}, ErrAlreadyExists
	}
	if len(roles) == 0 {
		roles = []Role{RoleUser}
	}
	d.insert(name, roles)
	return RoomInfo{Name: name, Roles: append([]Role(nil), roles...)}, nil
}

// Delete removes a room. Only admins may delete, and the lobby is protected.
func (d *Directory) Delete(name string, requester Role) error {
	if requester != RoleAdmin {
		return ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" || name == LobbyRoom {
		return ErrForbidden
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.rooms[name]; !exists {
		return ErrNotFound
	}
	delete(d.rooms, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

func containsRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
