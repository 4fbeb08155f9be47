package dialogue

import (
	"strings"

	"dialoguebot/internal/menu"
)

// Messages shown to users.
const (
	PromptName         = "let's start! what's your name?"
	PromptNameAgain    = "please send me your full name"
	PromptTopic        = "select a service:"
	PromptSubOption    = "Select a service:"
	CancelledText      = "Cancelling the dialogue"
	InvalidStateText   = "unable to handle the message. type /start to start"
	UnknownOptionText  = "Sorry, I don't recognize that command. Please choose a valid option."
	FetchFailedText    = "Sorry, I couldn't fetch that right now. Please try again later."
	NotImplementedText = "Sorry, that service is not available yet."
	NoDataText         = "There is nothing to show for this option yet."
)

// HelpText is the static command listing sent for /help.
var HelpText = buildHelpText()

func buildHelpText() string {
	var b strings.Builder
	b.WriteString("These commands are supported:")
	for _, c := range Commands {
		b.WriteString("\n/")
		b.WriteString(string(c.Command))
		b.WriteString(" - ")
		b.WriteString(c.Description)
	}
	return b.String()
}

// Target names the provider a ProviderCall goes to.
type Target string

const (
	TargetSoccer       Target = "soccer"
	TargetMovies       Target = "movies"
	TargetCrypto       Target = "crypto"
	TargetConversation Target = "conversation"
)

// Action is an outbound effect the router applies after a transition.
type Action interface {
	isAction()
}

// SendText sends a plain text message.
type SendText struct {
	Text string
}

// ShowKeyboard sends Text with one button per option; label and payload are the same string.
// ReplaceOrigin asks the router to edit the message that carried the pressed button, if any.
type ShowKeyboard struct {
	Text          string
	Options       []string
	ReplaceOrigin bool
}

// ShowCommandsMenu switches the chat's menu button to the command list.
type ShowCommandsMenu struct{}

// LogWarning produces no outbound message, only a warning log entry.
type LogWarning struct {
	Message string
	Payload string
}

func (SendText) isAction()         {}
func (ShowKeyboard) isAction()     {}
func (ShowCommandsMenu) isAction() {}
func (LogWarning) isAction()       {}

// ProviderCall asks the router to query an external provider and relay the result.
type ProviderCall struct {
	Target Target
	Query  string
	// Header is sent before the result blocks when not empty.
	Header string
	// ResetOnError resets the dialogue to Start when the provider fails.
	ResetOnError bool
}

// Outcome is the result of one transition.
type Outcome struct {
	Next    State
	Reset   bool
	Actions []Action
	Call    *ProviderCall
}

var soccerHeaders = map[string]string{
	"today event": "Today's events:",
}

var movieHeaders = map[string]string{
	"Top trending Movie": "Trending Movies",
	"Popular Movie":      "Popular Movies",
	"Movies in Theatres": "Movies currently in theatres",
	"Upcoming Movie":     "Movies that will be released soon",
}

// Machine is the dialogue transition table. It has no side effects and is safe
// for concurrent use.
type Machine struct {
	catalog *menu.Catalog
}

// NewMachine creates a machine validating callbacks against catalog.
func NewMachine(catalog *menu.Catalog) *Machine {
	return &Machine{catalog: catalog}
}

// Transition computes the next state and the effects of ev arriving in cur.
func (m *Machine) Transition(cur State, ev Event) Outcome {
	if cur == nil {
		cur = Start{}
	}

	switch e := ev.(type) {
	case CommandEvent:
		return m.onCommand(cur, e.Command)
	case TextEvent:
		return m.onText(cur, e.Text)
	case CallbackEvent:
		return m.onCallback(cur, e.Payload)
	default:
		return stay(cur, LogWarning{Message: "received unknown update"})
	}
}

func (m *Machine) onCommand(cur State, cmd Command) Outcome {
	switch cmd {
	case CommandHelp:
		return stay(cur, SendText{Text: HelpText})
	case CommandCancel:
		return Outcome{
			Next:    Start{},
			Reset:   true,
			Actions: []Action{SendText{Text: CancelledText}},
		}
	case CommandStart:
		// From any other state /start restarts the dialogue.
		return Outcome{
			Next:    AwaitingName{},
			Reset:   true,
			Actions: []Action{ShowCommandsMenu{}, SendText{Text: PromptName}},
		}
	}
	return stay(cur, LogWarning{Message: "unsupported command", Payload: string(cmd)})
}

func (m *Machine) onText(cur State, text string) Outcome {
	if _, ok := cur.(AwaitingName); !ok {
		return stay(cur, SendText{Text: InvalidStateText})
	}

	name := strings.TrimSpace(text)
	if name == "" {
		return stay(cur, SendText{Text: PromptNameAgain})
	}
	return Outcome{
		Next: MenuSelection{Name: name},
		Actions: []Action{ShowKeyboard{
			Text:    PromptTopic,
			Options: m.catalog.TopOptions(),
		}},
	}
}

func (m *Machine) onCallback(cur State, payload string) Outcome {
	switch s := cur.(type) {
	case MenuSelection:
		return m.onTopic(s, payload)
	case AwaitingSoccerChoice:
		return m.onSubOption(s, menu.TopicSoccer, TargetSoccer, payload, soccerHeaders)
	case AwaitingMovieChoice:
		return m.onSubOption(s, menu.TopicMovies, TargetMovies, payload, movieHeaders)
	case AwaitingCryptoChoice:
		return m.onSubOption(s, menu.TopicCrypto, TargetCrypto, payload, nil)
	case AwaitingPromptChoice:
		return Outcome{
			Next: s,
			Call: &ProviderCall{Target: TargetConversation, Query: payload, ResetOnError: true},
		}
	case Start, AwaitingName:
		return stay(cur, LogWarning{Message: "button pressed outside of a menu", Payload: payload})
	}
	return stay(cur, LogWarning{Message: "unhandled state", Payload: cur.StateName()})
}

func (m *Machine) onTopic(s MenuSelection, payload string) Outcome {
	topic, ok := m.catalog.TopicFor(payload)
	if !ok {
		return Outcome{
			Next:    Start{},
			Reset:   true,
			Actions: []Action{LogWarning{Message: "unrecognized service", Payload: payload}},
		}
	}

	options, err := m.catalog.SubOptions(payload)
	if err != nil {
		return Outcome{
			Next:    Start{},
			Reset:   true,
			Actions: []Action{LogWarning{Message: err.Error(), Payload: payload}},
		}
	}

	var next State
	switch topic {
	case menu.TopicSoccer:
		next = AwaitingSoccerChoice{Name: s.Name}
	case menu.TopicCrypto:
		next = AwaitingCryptoChoice{Name: s.Name}
	case menu.TopicMovies:
		next = AwaitingMovieChoice{Name: s.Name}
	default:
		return Outcome{
			Next:    Start{},
			Reset:   true,
			Actions: []Action{LogWarning{Message: "unrecognized service", Payload: payload}},
		}
	}

	return Outcome{
		Next: next,
		Actions: []Action{ShowKeyboard{
			Text:          PromptSubOption,
			Options:       options,
			ReplaceOrigin: true,
		}},
	}
}

func (m *Machine) onSubOption(cur State, topic menu.Topic, target Target, payload string, headers map[string]string) Outcome {
	if !m.catalog.HasSubOption(topic, payload) {
		return stay(cur, SendText{Text: UnknownOptionText})
	}
	return Outcome{
		Next: cur,
		Call: &ProviderCall{
			Target: target,
			Query:  payload,
			Header: headers[payload],
		},
	}
}

func stay(cur State, actions ...Action) Outcome {
	return Outcome{Next: cur, Actions: actions}
}
