package protocol_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorchat/parlor/internal/protocol"
)

func TestClientRoundTrip(t *testing.T) {
	messages := []protocol.ClientMessage{
		protocol.MakeChatRoom{Name: "general"},
		protocol.JoinChatRoom{Name: "general"},
		protocol.ListChatRooms{},
		protocol.SendMessage{Content: "hello there"},
		protocol.ChangeName{NewName: "bob"},
		protocol.Help{},
	}

	for _, msg := range messages {
		frame, err := protocol.EncodeClient(msg)
		require.NoError(t, err)

		decoded, err := protocol.DecodeClient(frame)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	}
}

func TestServerRoundTrip(t *testing.T) {
	messages := []protocol.ServerMessage{
		protocol.NewMessage{Content: "hi", UserName: "alice"},
		protocol.JoinedChatRoom{Name: "random"},
		protocol.ChatRoomList{Names: []string{"a", "b"}},
		protocol.ErrorReply{Message: "room not found"},
	}

	for _, msg := range messages {
		frame, err := protocol.EncodeServer(msg)
		require.NoError(t, err)

		decoded, err := protocol.DecodeServer(frame)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	frame, err := cbor.Marshal(map[string]any{"t": "bogus", "d": []byte{0xa0}})
	require.NoError(t, err)

	_, err = protocol.DecodeClient(frame)
	require.ErrorIs(t, err, protocol.ErrUnknownTag)

	_, err = protocol.DecodeServer(frame)
	require.ErrorIs(t, err, protocol.ErrUnknownTag)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := protocol.DecodeClient([]byte{0xff, 0x00, 0x13})
	require.Error(t, err)
}

// A server tag must never decode as a client command: the unions are
// separate namespaces even where tags look similar.
func TestUnionsAreSeparate(t *testing.T) {
	frame, err := protocol.EncodeServer(protocol.JoinedChatRoom{Name: "general"})
	require.NoError(t, err)

	_, err = protocol.DecodeClient(frame)
	require.ErrorIs(t, err, protocol.ErrUnknownTag)
}

func TestDeterministicEncoding(t *testing.T) {
	a, err := protocol.EncodeClient(protocol.SendMessage{Content: "same"})
	require.NoError(t, err)
	b, err := protocol.EncodeClient(protocol.SendMessage{Content: "same"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
