package main

import (
	"fmt"
	"strings"

	"github.com/parlorchat/parlor/internal/protocol"
)

// action classifies one line of user input. Help and Exit are handled
// locally and never cross the wire.
type action int

const (
	actionSend action = iota
	actionHelp
	actionExit
	actionNone
)

// parseLine turns one input line into either a wire command or a local
// action. Lines starting with "/" are commands; anything else is a chat
// message for the current room.
func parseLine(line string) (protocol.ClientMessage, action, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, actionNone, nil
	}
	if !strings.HasPrefix(line, "/") {
		return protocol.SendMessage{Content: line}, actionSend, nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return nil, actionNone, fmt.Errorf("empty command")
	}

	keyword, args := fields[0], fields[1:]
	switch keyword {
	case "make":
		if len(args) < 1 {
			return nil, actionNone, fmt.Errorf("usage: /make <room>")
		}
		return protocol.MakeChatRoom{Name: args[0]}, actionSend, nil
	case "join":
		if len(args) < 1 {
			return nil, actionNone, fmt.Errorf("usage: /join <room>")
		}
		return protocol.JoinChatRoom{Name: args[0]}, actionSend, nil
	case "list":
		return protocol.ListChatRooms{}, actionSend, nil
	case "name":
		if len(args) < 1 {
			return nil, actionNone, fmt.Errorf("usage: /name <name>")
		}
		return protocol.ChangeName{NewName: strings.Join(args, " ")}, actionSend, nil
	case "help":
		return nil, actionHelp, nil
	case "exit":
		return nil, actionExit, nil
	default:
		return nil, actionNone, fmt.Errorf("unknown command %q (try /help)", keyword)
	}
}

const localHelp = `Commands:
  /make <room>   create a chat room
  /join <room>   join a chat room
  /list          list chat rooms
  /name <name>   change your display name
  /help          show this summary
  /exit          disconnect
Any other input is sent to your current room.`
