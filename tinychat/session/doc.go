// Package session implements the Tinychat room session.
//
// A Session owns one socket, the outbound request counter and the membership
// table of one room. Its lifecycle is fixed:
//
//	s := session.New(room, nick, token.NewFetcher(""))
//	if err := s.Connect(ctx, dial); err != nil { ... }   // ErrConnect
//	if err := s.JoinRoom(ctx); err != nil { ... }        // ErrJoin
//	err := s.RunLoop()                                   // ErrTransport
//
// Request Numbering:
//
// Every outbound message, the join and each pong included, is stamped with a
// "req" field. Values run 1, 2, 3, ... within a connection epoch and restart
// at 1 when JoinRoom is called.
//
// Membership:
//
// The table maps server handles to the attributes the server sent. It is
// changed only by four events:
//   - join: store the message minus "tc" and "handle", replacing any record
//   - nick: set "nick" on an existing record
//   - quit: delete the record; quitting an absent handle does nothing
//   - userlist: store every listed user; users not listed are kept
//
// A nick for an unknown handle fails with ErrUnknownHandle. RunLoop logs it
// together with malformed events and carries on; only socket failures and
// frames that are not JSON objects end the loop.
//
// Concurrency:
//
// RunLoop reads, dispatches and answers pings on the calling goroutine. No
// other method may run concurrently with it except Close.
package session
