package server

import (
	"fmt"
	"sync"
)

// DefaultRoomBuffer is the per-subscriber buffer depth used when the
// configuration does not override it.
const DefaultRoomBuffer = 10

// Room is a bounded broadcast channel for one named chat room. Any number of
// sessions may publish and subscribe concurrently; the registry lock is never
// involved once a *Room has been handed out.
//
// Delivery is lossy for slow consumers: each subscriber has a fixed buffer,
// and when it is full the oldest buffered message is evicted to make space.
// Publish therefore never blocks, whatever the read rate on the other side.
type Room struct {
	name     string
	capacity int

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewRoom creates an empty room. capacity is the per-subscriber buffer
// depth; values below one fall back to DefaultRoomBuffer.
func NewRoom(name string, capacity int) *Room {
	if capacity < 1 {
		capacity = DefaultRoomBuffer
	}
	return &Room{
		name:     name,
		capacity: capacity,
		subs:     make(map[*Subscription]struct{}),
	}
}

// Name returns the room's registry key.
func (r *Room) Name() string {
	return r.name
}

// Publish fans msg out to every current subscriber in publish order.
// It never blocks on a slow subscriber.
func (r *Room) Publish(msg ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sub := range r.subs {
		sub.push(msg)
	}
}

// Subscribe attaches a new receive handle to the room. The handle observes
// only messages published after this call; there is no backlog replay.
//
// Existing members receive a synthetic join notice for memberName. The notice
// is published before the new handle is attached, so the joining session
// never sees its own announcement.
func (r *Room) Subscribe(memberName string) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	notice := ChatMessage{
		SenderName: SystemSender,
		Content:    fmt.Sprintf("User %s joined", memberName),
	}
	for sub := range r.subs {
		sub.push(notice)
	}

	sub := &Subscription{
		room: r,
		ch:   make(chan ChatMessage, r.capacity),
	}
	r.subs[sub] = struct{}{}
	return sub
}

// Subscription is one subscriber's receive handle on a room.
type Subscription struct {
	room *Room
	ch   chan ChatMessage
}

// C returns the channel broadcasts arrive on. The session loop must re-read
// this every iteration, since joining another room swaps the subscription.
func (s *Subscription) C() <-chan ChatMessage {
	return s.ch
}

// Cancel detaches the handle from its room. Messages still buffered are
// discarded. Cancel is idempotent and safe to call from session teardown
// while publishers are active.
func (s *Subscription) Cancel() {
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	delete(s.room.subs, s)
}

// push enqueues msg, evicting the subscriber's oldest buffered message when
// the buffer is full. Callers hold the room lock, so pushes for one room are
// totally ordered.
func (s *Subscription) push(msg ChatMessage) {
	for {
		select {
		case s.ch <- msg:
			return
		default:
		}
		// Buffer full: drop the oldest entry and retry. The inner default
		// covers a consumer that drained the channel between the two selects.
		select {
		case <-s.ch:
		default:
		}
	}
}
