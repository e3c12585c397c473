package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustDecode(t *testing.T, frame string) *Message {
	t.Helper()
	msg, err := Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode(%s) failed: %v", frame, err)
	}
	return msg
}

func TestParseEventJoin(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, `{"tc":"join","handle":12,"nick":"alice","lf":"US"}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}

	join, ok := ev.(JoinEvent)
	if !ok {
		t.Fatalf("Expected JoinEvent, got %T", ev)
	}
	if join.Handle != "12" {
		t.Errorf("Expected handle 12, got %q", join.Handle)
	}

	expected := map[string]any{"nick": "alice", "lf": "US"}
	if !reflect.DeepEqual(join.Attributes, expected) {
		t.Errorf("Expected attributes %v, got %v", expected, join.Attributes)
	}
}

func TestParseEventNick(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, `{"tc":"nick","handle":"h1","nick":"alice2"}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if ev != (NickEvent{Handle: "h1", Nick: "alice2"}) {
		t.Errorf("Unexpected event: %#v", ev)
	}
}

func TestParseEventPingAndQuit(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, `{"tc":"ping"}`))
	if err != nil || ev != (PingEvent{}) {
		t.Errorf("Expected PingEvent, got %#v (%v)", ev, err)
	}

	ev, err = ParseEvent(mustDecode(t, `{"tc":"quit","handle":3}`))
	if err != nil || ev != (QuitEvent{Handle: "3"}) {
		t.Errorf("Expected QuitEvent for handle 3, got %#v (%v)", ev, err)
	}
}

func TestParseEventUserlist(t *testing.T) {
	ev, err := ParseEvent(mustDecode(t, `{"tc":"userlist","users":[{"handle":"h2","nick":"bob"},{"handle":3,"nick":"carol","mod":true}]}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}

	list, ok := ev.(UserlistEvent)
	if !ok {
		t.Fatalf("Expected UserlistEvent, got %T", ev)
	}

	expected := []User{
		{Handle: "h2", Attributes: map[string]any{"nick": "bob"}},
		{Handle: "3", Attributes: map[string]any{"nick": "carol", "mod": true}},
	}
	if !reflect.DeepEqual(list.Users, expected) {
		t.Errorf("Expected %v, got %v", expected, list.Users)
	}
}

func TestParseEventUnknown(t *testing.T) {
	frames := map[string]string{
		`{"tc":"unknown_event","foo":1}`: "unknown_event",
		`{"tc":"pong"}`:                  "pong",
		`{"foo":1}`:                      "",
		`{"tc":5}`:                       "",
	}

	for frame, tag := range frames {
		ev, err := ParseEvent(mustDecode(t, frame))
		if err != nil {
			t.Errorf("ParseEvent(%s) failed: %v", frame, err)
			continue
		}
		if ev != (UnknownEvent{Tag: tag}) {
			t.Errorf("ParseEvent(%s) = %#v, want UnknownEvent{%q}", frame, ev, tag)
		}
	}
}

func TestParseEventMalformed(t *testing.T) {
	frames := []string{
		`{"tc":"join","nick":"nohandle"}`,
		`{"tc":"join","handle":{"x":1}}`,
		`{"tc":"nick","nick":"x"}`,
		`{"tc":"nick","handle":1}`,
		`{"tc":"nick","handle":1,"nick":7}`,
		`{"tc":"quit"}`,
		`{"tc":"userlist"}`,
		`{"tc":"userlist","users":{}}`,
		`{"tc":"userlist","users":[{"handle":1,"nick":"a"},"bogus"]}`,
		`{"tc":"userlist","users":[{"nick":"a"}]}`,
	}

	for _, frame := range frames {
		_, err := ParseEvent(mustDecode(t, frame))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseEvent(%s): expected ErrMalformed, got %v", frame, err)
		}
	}
}

func TestHandleFrom(t *testing.T) {
	tests := []struct {
		in   any
		want Handle
		ok   bool
	}{
		{"abc", "abc", true},
		{float64(42), "42", true},
		{json.Number("17"), "17", true},
		{int(5), "5", true},
		{int64(6), "6", true},
		{nil, "", false},
		{true, "", false},
		{[]any{1}, "", false},
	}

	for _, tt := range tests {
		got, ok := HandleFrom(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("HandleFrom(%#v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
