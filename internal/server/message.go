// Package server implements the room engine behind the chat relay: the
// shared room registry, the per-room broadcast channel, and the per-connection
// session actor that bridges wire commands with room traffic.
package server

import "github.com/google/uuid"

// SystemSender is the display name on synthetic room notices such as join
// and leave announcements.
const SystemSender = "Room"

// ChatMessage is the payload fanned out inside a room. SenderName is a
// snapshot of the sender's display name at publish time; later renames do not
// relabel messages already in flight. Synthetic notices use uuid.Nil as
// SenderID so they are never suppressed as self-echo.
type ChatMessage struct {
	SenderID   uuid.UUID
	SenderName string
	Content    string
}
