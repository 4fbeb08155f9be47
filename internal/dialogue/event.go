package dialogue

import "strings"

// Command is one of the commands recognized in every state.
type Command string

const (
	CommandHelp   Command = "help"
	CommandStart  Command = "start"
	CommandCancel Command = "cancel"
)

// Commands lists the supported commands in the order they are presented to users.
var Commands = []struct {
	Command     Command
	Description string
}{
	{CommandHelp, "Display this text."},
	{CommandStart, "Start the dialogue."},
	{CommandCancel, "Cancel the dialogue."},
}

// ParseCommand maps a command token (with or without the leading slash or a
// @botname suffix) to a Command. Matching is case-insensitive.
func ParseCommand(token string) (Command, bool) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "/")
	if i := strings.IndexByte(token, '@'); i >= 0 {
		token = token[:i]
	}
	switch Command(strings.ToLower(token)) {
	case CommandHelp:
		return CommandHelp, true
	case CommandStart:
		return CommandStart, true
	case CommandCancel:
		return CommandCancel, true
	}
	return "", false
}

// Event is a classified inbound update.
type Event interface {
	Kind() string
	isEvent()
}

// CommandEvent is a recognized command message.
type CommandEvent struct {
	Command Command
}

// TextEvent is any non-command message. Text is empty when the message had no text body.
type TextEvent struct {
	Text string
}

// CallbackEvent is a button press carrying the payload of the pressed button.
type CallbackEvent struct {
	Payload string
}

// UnrecognizedEvent is an update of a shape the bot does not handle.
type UnrecognizedEvent struct{}

func (e CommandEvent) Kind() string    { return "command:" + string(e.Command) }
func (TextEvent) Kind() string         { return "text" }
func (CallbackEvent) Kind() string     { return "callback" }
func (UnrecognizedEvent) Kind() string { return "unrecognized" }

func (CommandEvent) isEvent()      {}
func (TextEvent) isEvent()         {}
func (CallbackEvent) isEvent()     {}
func (UnrecognizedEvent) isEvent() {}
