// Command client is a minimal terminal chat client for the parlor relay.
// It reads commands and chat lines from stdin and prints room traffic as
// "[room] name: content".
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parlorchat/parlor/internal/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	flag.Parse()

	conn, resp, err := (&websocket.Dialer{HandshakeTimeout: 5 * time.Second}).
		Dial(fmt.Sprintf("ws://%s/ws", *addr), http.Header{})
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("connected to %s (try /help)\n", *addr)

	lines := make(chan string)
	go readLines(lines)

	serverMsgs := make(chan protocol.ServerMessage)
	go readServer(conn, serverMsgs)

	currentRoom := "lobby"
	for {
		select {
		case msg, ok := <-serverMsgs:
			if !ok {
				fmt.Println("connection closed by server")
				return
			}
			currentRoom = printServerMessage(msg, currentRoom)

		case line, ok := <-lines:
			if !ok {
				return
			}
			cmd, act, err := parseLine(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			switch act {
			case actionHelp:
				fmt.Println(localHelp)
			case actionExit:
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			case actionSend:
				if err := sendCommand(conn, cmd); err != nil {
					fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
					return
				}
			case actionNone:
			}
		}
	}
}

func readLines(out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// readServer is the connection's sole reader. It decodes each binary frame
// and forwards it to the main loop; any error ends the client.
func readServer(conn *websocket.Conn, out chan<- protocol.ServerMessage) {
	defer close(out)
	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		msg, err := protocol.DecodeServer(frame)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad frame from server: %v\n", err)
			return
		}
		out <- msg
	}
}

func sendCommand(conn *websocket.Conn, cmd protocol.ClientMessage) error {
	frame, err := protocol.EncodeClient(cmd)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.BinaryMessage, frame)
}

// printServerMessage renders one server message and returns the (possibly
// updated) current room name.
func printServerMessage(msg protocol.ServerMessage, currentRoom string) string {
	switch m := msg.(type) {
	case protocol.NewMessage:
		fmt.Printf("[%s] %s: %s\n", currentRoom, m.UserName, m.Content)
	case protocol.JoinedChatRoom:
		fmt.Printf("joined %s\n", m.Name)
		return m.Name
	case protocol.ChatRoomList:
		if len(m.Names) == 0 {
			fmt.Println("no rooms yet (try /make)")
			break
		}
		fmt.Println("rooms:")
		for _, name := range m.Names {
			fmt.Printf("  %s\n", name)
		}
	case protocol.ErrorReply:
		fmt.Printf("error: %s\n", m.Message)
	}
	return currentRoom
}
