package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Domain errors reported back to the client as ErrorReply values. They never
// terminate a session.
var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

// Registry is the shared name→Room map. All sessions hold a reference to the
// same instance, handed to them at construction. Lookups take a read lock
// and may run concurrently; Create takes the write lock for its duration, so
// no reader ever observes a partially-inserted room.
type Registry struct {
	roomBuffer int

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry. roomBuffer is the per-subscriber
// buffer depth applied to every room it creates.
func NewRegistry(roomBuffer int) *Registry {
	return &Registry{
		roomBuffer: roomBuffer,
		rooms:      make(map[string]*Room),
	}
}

// Create inserts a new, empty room under name. It fails with ErrRoomExists
// if the name is already taken.
func (reg *Registry) Create(name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms[name]; ok {
		return fmt.Errorf("%w: %q", ErrRoomExists, name)
	}
	reg.rooms[name] = NewRoom(name, reg.roomBuffer)
	return nil
}

// Get returns the room registered under name, or ErrRoomNotFound. Ownership
// stays with the registry; callers subscribe and publish through the handle.
func (reg *Registry) Get(name string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, name)
	}
	return room, nil
}

// List returns a snapshot of all room names in unspecified order.
func (reg *Registry) List() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return lo.Keys(reg.rooms)
}

// Len returns the number of registered rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
