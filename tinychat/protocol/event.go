package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Handle is the server-assigned identifier of a room occupant.
type Handle string

// HandleFrom normalises a wire value into a Handle. Numbers and strings are
// accepted; anything else is rejected.
func HandleFrom(v any) (Handle, bool) {
	switch h := v.(type) {
	case string:
		return Handle(h), true
	case float64:
		return Handle(strconv.FormatFloat(h, 'f', -1, 64)), true
	case json.Number:
		return Handle(h.String()), true
	case int:
		return Handle(strconv.Itoa(h)), true
	case int64:
		return Handle(strconv.FormatInt(h, 10)), true
	default:
		return "", false
	}
}

// Event is one inbound message projected into its typed variant.
type Event interface {
	Command() Command
}

// JoinEvent announces a new occupant. Attributes hold every field except
// "tc" and "handle".
type JoinEvent struct {
	Handle     Handle
	Attributes map[string]any
}

// NickEvent renames an existing occupant.
type NickEvent struct {
	Handle Handle
	Nick   string
}

// PingEvent is a keepalive that must be answered with a pong.
type PingEvent struct{}

// QuitEvent announces a departure.
type QuitEvent struct {
	Handle Handle
}

// User is one entry of a roster snapshot.
type User struct {
	Handle     Handle
	Attributes map[string]any
}

// UserlistEvent is a roster snapshot, in server order.
type UserlistEvent struct {
	Users []User
}

// UnknownEvent carries any tag the client does not act on.
type UnknownEvent struct {
	Tag string
}

func (JoinEvent) Command() Command     { return CommandJoin }
func (NickEvent) Command() Command     { return CommandNick }
func (PingEvent) Command() Command     { return CommandPing }
func (QuitEvent) Command() Command     { return CommandQuit }
func (UserlistEvent) Command() Command { return CommandUserlist }
func (UnknownEvent) Command() Command  { return CommandUnknown }

// ParseEvent projects a decoded message into its event variant. Only the
// fields each variant needs are checked.
func ParseEvent(m *Message) (Event, error) {
	switch cmd := m.Command(); cmd {
	case CommandJoin:
		handle, err := requireHandle(m, cmd)
		if err != nil {
			return nil, err
		}
		attrs := m.Map()
		delete(attrs, FieldCommand)
		delete(attrs, FieldHandle)
		return JoinEvent{Handle: handle, Attributes: attrs}, nil

	case CommandNick:
		handle, err := requireHandle(m, cmd)
		if err != nil {
			return nil, err
		}
		nick, ok := m.GetString(FieldNick)
		if !ok {
			return nil, fmt.Errorf("%w: nick without string nick field", ErrMalformed)
		}
		return NickEvent{Handle: handle, Nick: nick}, nil

	case CommandPing:
		return PingEvent{}, nil

	case CommandQuit:
		handle, err := requireHandle(m, cmd)
		if err != nil {
			return nil, err
		}
		return QuitEvent{Handle: handle}, nil

	case CommandUserlist:
		return parseUserlist(m)

	default:
		return UnknownEvent{Tag: m.Tag()}, nil
	}
}

func requireHandle(m *Message, cmd Command) (Handle, error) {
	v, ok := m.Get(FieldHandle)
	if !ok {
		return "", fmt.Errorf("%w: %s without handle", ErrMalformed, cmd)
	}
	handle, ok := HandleFrom(v)
	if !ok {
		return "", fmt.Errorf("%w: %s with handle of type %T", ErrMalformed, cmd, v)
	}
	return handle, nil
}

// parseUserlist rejects the whole snapshot if any entry is unusable.
func parseUserlist(m *Message) (Event, error) {
	raw, ok := m.Get(FieldUsers)
	if !ok {
		return nil, fmt.Errorf("%w: userlist without users", ErrMalformed)
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: userlist users of type %T", ErrMalformed, raw)
	}

	users := make([]User, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: userlist entry %d of type %T", ErrMalformed, i, entry)
		}
		handle, ok := HandleFrom(obj[FieldHandle])
		if !ok {
			return nil, fmt.Errorf("%w: userlist entry %d without handle", ErrMalformed, i)
		}
		attrs := make(map[string]any, len(obj))
		for k, v := range obj {
			if k != FieldHandle {
				attrs[k] = v
			}
		}
		users = append(users, User{Handle: handle, Attributes: attrs})
	}
	return UserlistEvent{Users: users}, nil
}
