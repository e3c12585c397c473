package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field names used on the wire
const (
	FieldCommand   = "tc"
	FieldRequest   = "req"
	FieldHandle    = "handle"
	FieldNick      = "nick"
	FieldUsers     = "users"
	FieldUserAgent = "useragent"
	FieldToken     = "token"
	FieldRoom      = "room"
)

// ClientUserAgent identifies the client in the join message. The server
// matches it against known client builds; it must not change.
const ClientUserAgent = "tinychat-client-webrtc-chrome_win32-2.0.9-255"

var (
	ErrNotObject = errors.New("frame is not a JSON object")
	ErrMalformed = errors.New("malformed message")
)

// Message is a JSON object whose keys keep their insertion order.
type Message struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewMessage creates a message tagged with cmd.
func NewMessage(cmd Command) *Message {
	return NewEmptyMessage().Set(FieldCommand, cmd.String())
}

// NewEmptyMessage creates a message with no fields.
func NewEmptyMessage() *Message {
	return &Message{fields: orderedmap.New[string, any]()}
}

// JoinMessage builds the room join request. Field order is part of the
// server contract.
func JoinMessage(token, room, nick string) *Message {
	return NewMessage(CommandJoin).
		Set(FieldUserAgent, ClientUserAgent).
		Set(FieldToken, token).
		Set(FieldRoom, room).
		Set(FieldNick, nick)
}

// PongMessage builds the keepalive reply.
func PongMessage() *Message {
	return NewMessage(CommandPong)
}

// Decode parses one frame. The frame must be a JSON object.
func Decode(data []byte) (*Message, error) {
	m := NewEmptyMessage()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serialises the message, keys in insertion order.
func (m *Message) Encode() ([]byte, error) {
	return m.MarshalJSON()
}

// Set assigns key, keeping its original position when it already exists.
func (m *Message) Set(key string, value any) *Message {
	if m.fields == nil {
		m.fields = orderedmap.New[string, any]()
	}
	m.fields.Set(key, value)
	return m
}

// Get returns the raw value stored under key.
func (m *Message) Get(key string) (any, bool) {
	if m == nil || m.fields == nil {
		return nil, false
	}
	return m.fields.Get(key)
}

// GetString returns the value under key when it is a JSON string.
func (m *Message) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Delete removes key if present.
func (m *Message) Delete(key string) {
	if m.fields == nil {
		return
	}
	m.fields.Delete(key)
}

// Len returns the number of fields.
func (m *Message) Len() int {
	if m == nil || m.fields == nil {
		return 0
	}
	return m.fields.Len()
}

// Keys returns the field names in wire order.
func (m *Message) Keys() []string {
	if m == nil || m.fields == nil {
		return nil
	}
	keys := make([]string, 0, m.fields.Len())
	for pair := m.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a shallow copy; nested values are shared.
func (m *Message) Clone() *Message {
	c := NewEmptyMessage()
	if m == nil || m.fields == nil {
		return c
	}
	for pair := m.fields.Oldest(); pair != nil; pair = pair.Next() {
		c.fields.Set(pair.Key, pair.Value)
	}
	return c
}

// Map returns the fields as a plain map.
func (m *Message) Map() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil || m.fields == nil {
		return out
	}
	for pair := m.fields.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// Tag returns the raw "tc" value, or "" when absent or not a string.
func (m *Message) Tag() string {
	tag, _ := m.GetString(FieldCommand)
	return tag
}

// Command returns the parsed discriminant.
func (m *Message) Command() Command {
	return ParseCommand(m.Tag())
}

// MarshalJSON implements json.Marshaler
func (m *Message) MarshalJSON() ([]byte, error) {
	if m == nil || m.fields == nil {
		return []byte("{}"), nil
	}
	return m.fields.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Anything other than a JSON
// object is rejected with ErrNotObject.
func (m *Message) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return fmt.Errorf("%w: invalid JSON", ErrNotObject)
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}

	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	m.fields = fields
	return nil
}
