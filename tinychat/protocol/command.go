package protocol

// Command is the discriminant carried in the "tc" field.
type Command int

const (
	CommandUnknown Command = iota
	CommandJoin
	CommandNick
	CommandPing
	CommandPong
	CommandQuit
	CommandUserlist
)

var commandTags = map[Command]string{
	CommandJoin:     "join",
	CommandNick:     "nick",
	CommandPing:     "ping",
	CommandPong:     "pong",
	CommandQuit:     "quit",
	CommandUserlist: "userlist",
}

var tagCommands = func() map[string]Command {
	m := make(map[string]Command, len(commandTags))
	for cmd, tag := range commandTags {
		m[tag] = cmd
	}
	return m
}()

// ParseCommand maps a "tc" tag to its Command. Unrecognised tags map to CommandUnknown.
func ParseCommand(tag string) Command {
	if cmd, ok := tagCommands[tag]; ok {
		return cmd
	}
	return CommandUnknown
}

// String returns the wire tag of the command.
func (c Command) String() string {
	if tag, ok := commandTags[c]; ok {
		return tag
	}
	return "unknown"
}
