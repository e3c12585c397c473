// Package protocol defines the Tinychat wire envelope and the events carried in it.
//
// Every frame on the socket, inbound or outbound, is a single JSON object.
// Inbound objects are tagged by their "tc" field; outbound objects always
// carry an integer "req" field assigned by the session.
//
// Envelope:
//
// Message keeps keys in insertion order. The server keys client behaviour off
// the join message, so its fields must reach the wire in the order they were
// set:
//
//	{"tc":"join","useragent":"...","token":"...","room":"...","nick":"...","req":1}
//
// Events:
//
// ParseEvent projects a decoded Message into one of the typed variants
// (JoinEvent, NickEvent, PingEvent, QuitEvent, UserlistEvent). Messages with
// a tag the client does not handle become UnknownEvent rather than an error.
// Recognised events missing the fields they need fail with ErrMalformed.
//
// Handles:
//
// The server sends handles as JSON numbers, some relays send them as strings.
// Both are normalised to Handle so that 42 and "42" address the same member.
package protocol
