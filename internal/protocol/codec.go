package protocol

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Tag values for the client→server union. These are the wire contract and
// must never be renumbered or reused.
const (
	tagMakeChatRoom  = "make_chat_room"
	tagJoinChatRoom  = "join_chat_room"
	tagListChatRooms = "list_chat_rooms"
	tagSendMessage   = "send_message"
	tagChangeName    = "change_name"
	tagHelp          = "help"
)

// Tag values for the server→client union.
const (
	tagNewMessage     = "new_message"
	tagJoinedChatRoom = "joined_chat_room"
	tagChatRoomList   = "list_chat_rooms"
	tagErr            = "err"
)

// ErrUnknownTag is wrapped by decode errors for envelopes whose tag is not
// part of the union being decoded.
var ErrUnknownTag = errors.New("unknown message tag")

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// logical message always produces identical bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields, which lets older
// peers read envelopes from newer ones.
var decMode cbor.DecMode

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic("protocol: CBOR encoder initialization failed: " + err.Error())
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic("protocol: CBOR decoder initialization failed: " + err.Error())
	}
}

// envelope is the outermost wire shape: a tag naming the variant and the
// variant's own fields as a nested CBOR value.
type envelope struct {
	Tag  string          `cbor:"t"`
	Data cbor.RawMessage `cbor:"d"`
}

func seal(tag string, payload any) ([]byte, error) {
	data, err := encMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", tag, err)
	}
	return encMode.Marshal(envelope{Tag: tag, Data: data})
}

func open(frame []byte) (envelope, error) {
	var env envelope
	if err := decMode.Unmarshal(frame, &env); err != nil {
		return envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return env, nil
}

// EncodeClient encodes a client command into a single wire frame.
func EncodeClient(msg ClientMessage) ([]byte, error) {
	switch m := msg.(type) {
	case MakeChatRoom:
		return seal(tagMakeChatRoom, m)
	case JoinChatRoom:
		return seal(tagJoinChatRoom, m)
	case ListChatRooms:
		return seal(tagListChatRooms, m)
	case SendMessage:
		return seal(tagSendMessage, m)
	case ChangeName:
		return seal(tagChangeName, m)
	case Help:
		return seal(tagHelp, m)
	default:
		return nil, fmt.Errorf("unencodable client message type %T", msg)
	}
}

// DecodeClient decodes a single wire frame into a client command. A frame
// whose tag is not in the client union fails with ErrUnknownTag.
func DecodeClient(frame []byte) (ClientMessage, error) {
	env, err := open(frame)
	if err != nil {
		return nil, err
	}

	var msg ClientMessage
	switch env.Tag {
	case tagMakeChatRoom:
		var m MakeChatRoom
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagJoinChatRoom:
		var m JoinChatRoom
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagListChatRooms:
		var m ListChatRooms
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagSendMessage:
		var m SendMessage
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagChangeName:
		var m ChangeName
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagHelp:
		var m Help
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: client %q", ErrUnknownTag, env.Tag)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", env.Tag, err)
	}
	return msg, nil
}

// EncodeServer encodes a server response into a single wire frame.
func EncodeServer(msg ServerMessage) ([]byte, error) {
	switch m := msg.(type) {
	case NewMessage:
		return seal(tagNewMessage, m)
	case JoinedChatRoom:
		return seal(tagJoinedChatRoom, m)
	case ChatRoomList:
		return seal(tagChatRoomList, m)
	case ErrorReply:
		return seal(tagErr, m)
	default:
		return nil, fmt.Errorf("unencodable server message type %T", msg)
	}
}

// DecodeServer decodes a single wire frame into a server response. A frame
// whose tag is not in the server union fails with ErrUnknownTag.
func DecodeServer(frame []byte) (ServerMessage, error) {
	env, err := open(frame)
	if err != nil {
		return nil, err
	}

	var msg ServerMessage
	switch env.Tag {
	case tagNewMessage:
		var m NewMessage
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagJoinedChatRoom:
		var m JoinedChatRoom
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagChatRoomList:
		var m ChatRoomList
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	case tagErr:
		var m ErrorReply
		err = decMode.Unmarshal(env.Data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: server %q", ErrUnknownTag, env.Tag)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", env.Tag, err)
	}
	return msg, nil
}
