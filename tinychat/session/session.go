package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"

	"github.com/kvazau/TcRTC/tinychat/protocol"
)

var (
	ErrConnect       = errors.New("connect failed")
	ErrJoin          = errors.New("join failed")
	ErrTransport     = errors.New("transport failed")
	ErrNotConnected  = errors.New("session not connected")
	ErrUnknownHandle = errors.New("unknown handle")
)

// Conn is the message socket the session drives
type Conn interface {
	// WriteText sends one complete text frame.
	WriteText(data []byte) error
	// ReadText blocks until the next text frame arrives.
	ReadText() ([]byte, error)
	Close() error
}

// DialFunc opens the socket. It is called once per Connect.
type DialFunc func(ctx context.Context) (Conn, error)

// TokenFetcher returns the join token for a room.
type TokenFetcher interface {
	Fetch(ctx context.Context, room string) (string, error)
}

// Observer is notified synchronously from the session goroutine.
type Observer interface {
	// MessageReceived is called for every decoded inbound message.
	MessageReceived(msg *protocol.Message)
	// RosterChanged is called after join, nick, quit and userlist are applied.
	RosterChanged(s *Session)
}

// Member holds the attributes the server sent for one occupant.
type Member map[string]any

// Nick returns the display name, or "" if the server sent none.
func (m Member) Nick() string {
	nick, _ := m[protocol.FieldNick].(string)
	return nick
}

// Session is one room connection from connect to the first fatal error.
// It is not safe for concurrent use, with the exception of Close.
type Session struct {
	room     string
	nickname string
	tokens   TokenFetcher

	conn     Conn
	req      int
	members  map[protocol.Handle]Member
	observer Observer
	recorder io.Writer
	debug    bool
}

// Option configures a Session
type Option func(*Session)

// WithObserver registers an observer for inbound messages and roster changes.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithRecorder appends every inbound frame, one per line, to w.
func WithRecorder(w io.Writer) Option {
	return func(s *Session) {
		s.recorder = w
	}
}

// WithDebug enables per-frame logging.
func WithDebug(debug bool) Option {
	return func(s *Session) {
		s.debug = debug
	}
}

// New creates a session for room. No network activity happens until Connect.
func New(room, nickname string, tokens TokenFetcher, opts ...Option) *Session {
	s := &Session{
		room:     room,
		nickname: nickname,
		tokens:   tokens,
		req:      1,
		members:  make(map[protocol.Handle]Member),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Room returns the room name.
func (s *Session) Room() string {
	return s.room
}

// Nickname returns the nickname requested at join.
func (s *Session) Nickname() string {
	return s.nickname
}

// NextRequest returns the req value the next outbound message will carry.
func (s *Session) NextRequest() int {
	return s.req
}

// Connect opens the socket.
func (s *Session) Connect(ctx context.Context, dial DialFunc) error {
	if s.conn != nil {
		return fmt.Errorf("%w: already connected", ErrConnect)
	}

	conn, err := dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	if conn == nil {
		return fmt.Errorf("%w: dialer returned no connection", ErrConnect)
	}

	s.conn = conn
	return nil
}

// JoinRoom restarts request numbering, fetches a token and sends the join
// message.
func (s *Session) JoinRoom(ctx context.Context) error {
	s.req = 1

	log.Printf("Requesting token for room %s", s.room)
	tok, err := s.tokens.Fetch(ctx, s.room)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJoin, err)
	}

	if err := s.Send(protocol.JoinMessage(tok, s.room, s.nickname)); err != nil {
		return fmt.Errorf("%w: %w", ErrJoin, err)
	}

	log.Printf("Joining room %s as %s", s.room, s.nickname)
	return nil
}

// Send stamps msg with the next req value and writes it as one frame. The
// caller's message is not modified. A failed write does not consume a req
// value.
func (s *Session) Send(msg *protocol.Message) error {
	if s.conn == nil {
		return ErrNotConnected
	}

	out := msg.Clone()
	out.Set(protocol.FieldRequest, s.req)

	data, err := out.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", out.Tag(), err)
	}

	if err := s.conn.WriteText(data); err != nil {
		return err
	}

	if s.debug {
		log.Printf("sent: %s", data)
	}

	s.req++
	return nil
}

// RunLoop reads and dispatches frames until the connection fails. It always
// returns an error wrapping ErrTransport.
func (s *Session) RunLoop() error {
	if s.conn == nil {
		return fmt.Errorf("%w: %w", ErrTransport, ErrNotConnected)
	}

	for {
		data, err := s.conn.ReadText()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}

		s.record(data)

		msg, err := protocol.Decode(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}

		if err := s.Handle(msg); err != nil {
			if errors.Is(err, protocol.ErrMalformed) || errors.Is(err, ErrUnknownHandle) {
				log.Printf("Warning: ignoring %s message: %v", msg.Tag(), err)
				continue
			}
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}
}

// Close closes the connection. It may be called from another goroutine to
// stop a blocked RunLoop.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Members returns a copy of the membership table.
func (s *Session) Members() map[protocol.Handle]Member {
	out := make(map[protocol.Handle]Member, len(s.members))
	for h, m := range s.members {
		out[h] = maps.Clone(m)
	}
	return out
}

// Member returns a copy of the record for handle.
func (s *Session) Member(handle protocol.Handle) (Member, bool) {
	m, ok := s.members[handle]
	if !ok {
		return nil, false
	}
	return maps.Clone(m), true
}

// Nicks returns the nick of every member, sorted.
func (s *Session) Nicks() []string {
	nicks := make([]string, 0, len(s.members))
	for _, m := range s.members {
		nicks = append(nicks, m.Nick())
	}
	slices.Sort(nicks)
	return nicks
}

func (s *Session) record(data []byte) {
	if s.recorder == nil {
		return
	}
	line := make([]byte, 0, len(data)+1)
	line = append(line, data...)
	line = append(line, '\n')
	if _, err := s.recorder.Write(line); err != nil {
		log.Printf("Warning: failed to record frame: %v", err)
	}
}
