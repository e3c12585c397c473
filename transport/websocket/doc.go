// Package websocket provides the client-side WebSocket transport for the
// Tinychat session.
//
// The websocket package implements:
//   - Dialing with the fixed negotiation profile the server expects
//   - Blocking receive of one complete text frame at a time
//   - Sending one complete text frame per outbound message
//   - Connection teardown
//
// Negotiation Profile:
//
// The server rejects handshakes that do not look like its own web client.
// DefaultProfile reproduces that client: target wss://wss.tinychat.com, the
// "tc" subprotocol, https://tinychat.com as Origin, a desktop Chrome
// User-Agent, and a permessage-deflate offer.
//
// Usage:
//
//	dialer := websocket.NewDialer(websocket.DefaultProfile())
//	conn, err := dialer.Dial(ctx)
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	conn.WriteText([]byte(`{"tc":"pong","req":2}`))
//	frame, err := conn.ReadText()
//
// Concurrency:
//
// A Conn supports one reader and one writer. The session drives both from the
// same goroutine. Close may be called from any goroutine to unblock a pending
// ReadText.
package websocket
