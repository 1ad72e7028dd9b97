// Package protocol defines the wire messages exchanged between the chat
// client and server, together with their binary encoding.
//
// Both directions are closed tagged unions: every message is one of a fixed
// set of variants, and the session loop switches over them exhaustively.
// Adding a variant means adding a tag constant, a type, and an arm in the
// encode/decode switches in codec.go.
package protocol

// ClientMessage is a command sent from a client to the server. The concrete
// types below are the only implementations.
type ClientMessage interface {
	clientMessage()
}

// MakeChatRoom asks the server to create a new, empty room.
type MakeChatRoom struct {
	Name string `cbor:"name"`
}

// JoinChatRoom asks the server to move the session into the named room.
type JoinChatRoom struct {
	Name string `cbor:"name"`
}

// ListChatRooms asks for the names of all rooms currently in the registry.
type ListChatRooms struct{}

// SendMessage publishes a chat line into the session's current room.
type SendMessage struct {
	Content string `cbor:"content"`
}

// ChangeName sets the session's display name. Messages already published
// keep the name they were sent with.
type ChangeName struct {
	NewName string `cbor:"new_name"`
}

// Help asks the server for its command summary.
type Help struct{}

func (MakeChatRoom) clientMessage()  {}
func (JoinChatRoom) clientMessage()  {}
func (ListChatRooms) clientMessage() {}
func (SendMessage) clientMessage()   {}
func (ChangeName) clientMessage()    {}
func (Help) clientMessage()          {}

// ServerMessage is a response or broadcast sent from the server to a client.
// The concrete types below are the only implementations.
type ServerMessage interface {
	serverMessage()
}

// NewMessage delivers one chat line to a room member. UserName is the
// sender's display name as it was at the moment of sending.
type NewMessage struct {
	Content  string `cbor:"content"`
	UserName string `cbor:"user_name"`
}

// JoinedChatRoom confirms that the session is now subscribed to Name.
type JoinedChatRoom struct {
	Name string `cbor:"name"`
}

// ChatRoomList carries the room names for a ListChatRooms request.
type ChatRoomList struct {
	Names []string `cbor:"names"`
}

// ErrorReply reports a recoverable command failure, such as joining a room
// that does not exist. The session stays alive after sending one.
type ErrorReply struct {
	Message string `cbor:"message"`
}

func (NewMessage) serverMessage()     {}
func (JoinedChatRoom) serverMessage() {}
func (ChatRoomList) serverMessage()   {}
func (ErrorReply) serverMessage()     {}
