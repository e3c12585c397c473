package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/kvazau/TcRTC/tinychat/protocol"
	"github.com/kvazau/TcRTC/tinychat/session"
)

// rosterPrinter writes human-readable membership updates
type rosterPrinter struct {
	out  io.Writer
	room string
}

func newRosterPrinter(out io.Writer, room string) *rosterPrinter {
	return &rosterPrinter{out: out, room: room}
}

// MessageReceived prints a line for membership events, before they are applied.
func (p *rosterPrinter) MessageReceived(msg *protocol.Message) {
	nick, _ := msg.GetString(protocol.FieldNick)
	raw, _ := msg.Get(protocol.FieldHandle)
	handle, _ := protocol.HandleFrom(raw)

	switch msg.Command() {
	case protocol.CommandJoin:
		fmt.Fprintf(p.out, "%s %s (%s) joined\n", color.GreenString("+"), nick, handle)
	case protocol.CommandNick:
		fmt.Fprintf(p.out, "%s %s is now known as %s\n", color.YellowString("~"), handle, nick)
	case protocol.CommandQuit:
		fmt.Fprintf(p.out, "%s %s left\n", color.RedString("-"), handle)
	}
}

// RosterChanged prints the current nick list.
func (p *rosterPrinter) RosterChanged(s *session.Session) {
	nicks := s.Nicks()
	fmt.Fprintf(p.out, "%s %d in room: %s\n",
		color.CyanString("[%s]", p.room), len(nicks), strings.Join(nicks, ", "))
}
