package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/protocol"
)

const (
	// writeWait bounds a single frame write to a client.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before the read
	// side gives up. pingPeriod must be shorter so a ping goes out first.
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// defaultName is the display name of a session that never ran ChangeName.
	defaultName = "anonymous"
)

const helpText = `Commands:
  /make <room>   create a chat room
  /join <room>   join a chat room
  /list          list chat rooms
  /name <name>   change your display name
  /help          show this summary
  /exit          disconnect
Any other input is sent to your current room.`

// Session is the server-side actor for one client connection. It owns the
// connection, an immutable id, a mutable display name, and the subscription
// to its current room. Nothing else touches this state; other components see
// the session only through the messages it publishes.
//
// Until the client joins a room the session is subscribed to a private,
// unregistered room, so sends are accepted but reach nobody.
type Session struct {
	id   uuid.UUID
	name string

	conn           *websocket.Conn
	registry       *Registry
	limiter        *rateLimiter
	maxMessageSize int64
	log            zerolog.Logger

	room *Room
	sub  *Subscription

	// inbound carries frames decoded by the read pump into the actor loop.
	// The pump closing it is the loop's termination signal.
	inbound chan protocol.ClientMessage
}

// NewSession builds a session for an upgraded connection. The caller is
// expected to run it with Run, typically on its own goroutine.
func NewSession(conn *websocket.Conn, registry *Registry, cfg Config, log zerolog.Logger) *Session {
	id := uuid.New()

	s := &Session{
		id:             id,
		name:           defaultName,
		conn:           conn,
		registry:       registry,
		limiter:        newRateLimiter(cfg.RateLimitBurst, cfg.RateLimitRefill),
		maxMessageSize: cfg.MaxMessageSize,
		inbound:        make(chan protocol.ClientMessage, 16),
		log:            log.With().Stringer("session", id).Logger(),
	}

	lobby := NewRoom("", cfg.RoomBuffer)
	s.room = lobby
	s.sub = lobby.Subscribe(s.name)
	return s
}

// Run executes the session's event loop until the connection closes or a
// fatal error occurs. Each iteration waits on whichever becomes ready first:
// the next decoded client command, the next broadcast on the current room
// subscription, or the keepalive ticker. s.sub.C() is re-read every pass, so
// a JoinChatRoom handled mid-loop redirects the wait to the new room.
func (s *Session) Run() {
	defer s.teardown()
	go s.readPump()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	s.log.Info().Str("remote", s.conn.RemoteAddr().String()).Msg("session started")

	for {
		select {
		case msg, ok := <-s.inbound:
			if !ok {
				// Read pump ended: disconnect or protocol violation.
				return
			}
			if err := s.handleCommand(msg); err != nil {
				s.log.Warn().Err(err).Msg("session terminating")
				return
			}

		case m := <-s.sub.C():
			if m.SenderID == s.id {
				continue
			}
			if err := s.send(protocol.NewMessage{Content: m.Content, UserName: m.SenderName}); err != nil {
				s.log.Warn().Err(err).Msg("forwarding broadcast failed")
				return
			}

		case <-ticker.C:
			if err := s.ping(); err != nil {
				s.log.Debug().Err(err).Msg("keepalive ping failed")
				return
			}
		}
	}
}

// handleCommand dispatches one client command. Domain failures become
// ErrorReply frames and return nil; a non-nil error is fatal to the session.
func (s *Session) handleCommand(msg protocol.ClientMessage) error {
	switch m := msg.(type) {
	case protocol.MakeChatRoom:
		if err := s.registry.Create(m.Name); err != nil {
			return s.sendErr(err)
		}
		s.log.Info().Str("room", m.Name).Msg("room created")
		return nil

	case protocol.JoinChatRoom:
		return s.joinRoom(m.Name)

	case protocol.ListChatRooms:
		return s.send(protocol.ChatRoomList{Names: s.registry.List()})

	case protocol.SendMessage:
		if !s.limiter.allow() {
			s.log.Warn().Msg("rate limit exceeded; discarding message")
			return nil
		}
		s.room.Publish(ChatMessage{SenderID: s.id, SenderName: s.name, Content: m.Content})
		return nil

	case protocol.ChangeName:
		s.log.Info().Str("from", s.name).Str("to", m.NewName).Msg("display name changed")
		s.name = m.NewName
		return nil

	case protocol.Help:
		return s.send(protocol.NewMessage{Content: helpText, UserName: "Server"})

	default:
		return fmt.Errorf("unhandled client message type %T", msg)
	}
}

func (s *Session) joinRoom(name string) error {
	room, err := s.registry.Get(name)
	if err != nil {
		// Recoverable: the session stays subscribed to its current room.
		return s.sendErr(err)
	}

	// Courtesy notice to the room being left. Best effort only: a dropped
	// connection never reaches this path.
	s.room.Publish(ChatMessage{
		SenderName: SystemSender,
		Content:    fmt.Sprintf("User %s left", s.name),
	})

	s.sub.Cancel()
	s.room = room
	s.sub = room.Subscribe(s.name)

	s.log.Info().Str("room", name).Msg("joined room")
	return s.send(protocol.JoinedChatRoom{Name: name})
}

// readPump is the sole reader of the connection. It decodes each binary
// frame and feeds it to the actor loop. Any transport error, non-binary
// frame, or undecodable payload ends the pump, which ends the session.
func (s *Session) readPump() {
	defer close(s.inbound)

	s.conn.SetReadLimit(s.maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("read failed")
			} else {
				s.log.Debug().Err(err).Msg("connection closed")
			}
			return
		}
		if kind != websocket.BinaryMessage {
			s.log.Warn().Int("frame_kind", kind).Msg("protocol violation: non-binary frame")
			return
		}

		msg, err := protocol.DecodeClient(frame)
		if err != nil {
			s.log.Warn().Err(err).Msg("protocol violation: undecodable frame")
			return
		}
		s.inbound <- msg
	}
}

// send is the sole writer of the connection; all writes funnel through the
// actor loop's goroutine.
func (s *Session) send(msg protocol.ServerMessage) error {
	frame, err := protocol.EncodeServer(msg)
	if err != nil {
		return fmt.Errorf("encoding reply: %w", err)
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("writing reply: %w", err)
	}
	return nil
}

// sendErr converts a recoverable domain error into an ErrorReply frame.
// The returned error is non-nil only if the write itself failed.
func (s *Session) sendErr(domainErr error) error {
	return s.send(protocol.ErrorReply{Message: domainErr.Error()})
}

func (s *Session) ping() error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// teardown drops the room subscription, closes the connection, and unblocks
// the read pump if it is parked on the inbound channel. Rooms are left
// consistent; no leave notice is broadcast on disconnect.
func (s *Session) teardown() {
	s.sub.Cancel()
	_ = s.conn.Close()
	for range s.inbound {
	}
	s.log.Info().Msg("session closed")
}

// closeConn force-closes the underlying connection, which terminates the
// session's goroutines. Used by graceful shutdown.
func (s *Session) closeConn() {
	_ = s.conn.Close()
}
