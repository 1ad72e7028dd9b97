package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorchat/parlor/internal/protocol"
)

func TestParseLineCommands(t *testing.T) {
	tests := []struct {
		line string
		want protocol.ClientMessage
	}{
		{"/make general", protocol.MakeChatRoom{Name: "general"}},
		{"/join general", protocol.JoinChatRoom{Name: "general"}},
		{"/list", protocol.ListChatRooms{}},
		{"/name bob the builder", protocol.ChangeName{NewName: "bob the builder"}},
		{"hello everyone", protocol.SendMessage{Content: "hello everyone"}},
		{"hello /not a command", protocol.SendMessage{Content: "hello /not a command"}},
	}

	for _, tt := range tests {
		cmd, act, err := parseLine(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		assert.Equal(t, actionSend, act, "line %q", tt.line)
		assert.Equal(t, tt.want, cmd, "line %q", tt.line)
	}
}

func TestParseLineLocalActions(t *testing.T) {
	_, act, err := parseLine("/help")
	require.NoError(t, err)
	assert.Equal(t, actionHelp, act)

	_, act, err = parseLine("/exit")
	require.NoError(t, err)
	assert.Equal(t, actionExit, act)

	_, act, err = parseLine("")
	require.NoError(t, err)
	assert.Equal(t, actionNone, act)
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{"/make", "/join", "/name", "/bogus", "/"} {
		_, _, err := parseLine(line)
		assert.Error(t, err, "line %q", line)
	}
}
