package gateway

import "sync"

// Registry is the single source of truth for who is connected and with what
// identity. It holds no room or membership state; evicting memberships on
// disconnect is the gateway's job.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	identity    *Identity
	displayName string
	profile     Role
	hasProfile  bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
	}
}

// Register creates an unauthenticated entry for the connection.
func (r *Registry) Register(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		r.entries[id] = &registryEntry{}
	}
}

// AttachIdentity records the identity for a connection, overwriting any
// previous one. Unknown ids are ignored: a disconnect racing the attach is
// not an error.
func (r *Registry) AttachIdentity(id string, identity Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return
	}
	entry.identity = &identity
}

// IdentityOf returns the identity attached to the connection, if any.
func (r *Registry) IdentityOf(id string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.identity == nil {
		return Identity{}, false
	}
	return *entry.identity, true
}

// SetDisplayName stores the human-readable name for a connection.
// Repeated calls overwrite. Unknown ids are ignored.
func (r *Registry) SetDisplayName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[id]; ok {
		entry.displayName = name
	}
}

// DisplayNameOf returns the connection's display name, defaulting to the
// connection id when none was set.
func (r *Registry) DisplayNameOf(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[id]; ok && entry.displayName != "" {
		return entry.displayName
	}
	return id
}

// SetProfile records the active profile declared by the connection.
func (r *Registry) SetProfile(id string, role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[id]; ok {
		entry.profile = role
		entry.hasProfile = true
	}
}

// ProfileOf returns the declared profile, if one was set.
func (r *Registry) ProfileOf(id string) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || !entry.hasProfile {
		return "", false
	}
	return entry.profile, true
}

// Remove purges all registry state for the connection. Called exactly once,
// on disconnect.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}
