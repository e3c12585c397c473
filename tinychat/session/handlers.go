package session

import (
	"fmt"
	"log"

	"github.com/kvazau/TcRTC/tinychat/protocol"
)

// Handle applies one inbound message. Unknown tags are ignored. Malformed
// recognised messages return an error wrapping protocol.ErrMalformed and
// leave the table untouched; a failed pong is returned as is.
func (s *Session) Handle(msg *protocol.Message) error {
	if s.debug {
		data, _ := msg.Encode()
		log.Printf("received: %s", data)
	}
	if s.observer != nil {
		s.observer.MessageReceived(msg)
	}

	ev, err := protocol.ParseEvent(msg)
	if err != nil {
		return err
	}

	switch ev := ev.(type) {
	case protocol.JoinEvent:
		s.onJoin(ev)
	case protocol.NickEvent:
		if err := s.onNick(ev); err != nil {
			return err
		}
	case protocol.PingEvent:
		return s.onPing()
	case protocol.QuitEvent:
		s.onQuit(ev)
	case protocol.UserlistEvent:
		s.onUserlist(ev)
	default:
		// protocol.UnknownEvent
		return nil
	}

	s.rosterChanged()
	return nil
}

// onJoin overwrites any record already held for the handle.
func (s *Session) onJoin(ev protocol.JoinEvent) {
	s.members[ev.Handle] = Member(ev.Attributes)
}

func (s *Session) onNick(ev protocol.NickEvent) error {
	m, ok := s.members[ev.Handle]
	if !ok {
		return fmt.Errorf("%w: nick for %s", ErrUnknownHandle, ev.Handle)
	}
	m[protocol.FieldNick] = ev.Nick
	return nil
}

func (s *Session) onPing() error {
	return s.Send(protocol.PongMessage())
}

// onQuit is a no-op for handles that are not present.
func (s *Session) onQuit(ev protocol.QuitEvent) {
	delete(s.members, ev.Handle)
}

// onUserlist merges the snapshot into the table. Handles missing from the
// snapshot keep their records.
func (s *Session) onUserlist(ev protocol.UserlistEvent) {
	for _, u := range ev.Users {
		s.members[u.Handle] = Member(u.Attributes)
	}
}

func (s *Session) rosterChanged() {
	if s.observer != nil {
		s.observer.RosterChanged(s)
	}
}
