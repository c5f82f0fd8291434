package irc

import "strings"

// Message is a single protocol line: an optional prefix plus either a
// Command or a Reply.
//
// Exactly one of Command/Reply is meaningful (IsCommand tells you which);
// Message doesn't use an interface{} union since the set of contents is
// closed and small enough that a flag plus two value fields is clearer than
// a type switch on interface{}.
type Message struct {
	Prefix    *Prefix
	IsCommand bool
	Command   Command
	Reply     Reply
}

// FromCommand wraps a Command with no prefix.
func FromCommand(c Command) Message { return Message{IsCommand: true, Command: c} }

// FromReply wraps a Reply with no prefix.
func FromReply(r Reply) Message { return Message{IsCommand: false, Reply: r} }

// WithPrefix returns a copy of m with the given prefix attached.
func (m Message) WithPrefix(p Prefix) Message {
	m.Prefix = &p
	return m
}

// String serializes the message to its wire form, without a trailing CRLF
// (the line codec appends that).
func (m Message) String() string {
	var body string
	if m.IsCommand {
		body = m.Command.String()
	} else {
		body = m.Reply.String()
	}
	if m.Prefix == nil {
		return body
	}
	return ":" + m.Prefix.String() + " " + body
}

// ParseMessage parses one decoded line (CRLF already stripped by the line
// codec) into a Message.
//
// Follows spec §4.3:
//  1. reject empty input
//  2. lift a leading ":prefix " if present
//  3. split off a trailing " :long argument" if present
//  4. the head of what remains is the command token
//  5. split the middle on single spaces, capped at 14 pieces, dropping
//     empties, then append the trailing argument if there was one
//  6. build the typed Command (case-insensitive verb, arity per command)
func ParseMessage(s string) (Message, error) {
	if s == "" {
		return Message{}, ErrEmptyMessage
	}

	state := s
	var prefix *Prefix
	if strings.HasPrefix(state, ":") {
		if idx := strings.IndexByte(state, ' '); idx != -1 {
			p := ParsePrefix(state[1:idx])
			prefix = &p
			state = state[idx+1:]
		} else {
			state = ""
		}
	}

	var trailing *string
	if idx := strings.Index(state, " :"); idx != -1 {
		t := state[idx+2:]
		trailing = &t
		state = state[:idx+1]
	}

	var verb string
	if idx := strings.IndexByte(state, ' '); idx != -1 {
		verb = state[:idx]
		state = state[idx+1:]
	} else if strings.HasPrefix(state, ":") {
		return Message{}, ErrInvalidCommand
	} else {
		verb = state
		state = ""
	}

	args := splitArgs(state, trailing)

	cmd, err := ParseCommand(verb, args)
	if err != nil {
		return Message{}, err
	}

	m := Message{IsCommand: true, Command: cmd}
	if prefix != nil {
		m.Prefix = prefix
	}
	return m, nil
}

// splitArgs splits middle on single spaces, dropping empties and keeping
// at most the first 14 pieces (any further middles are discarded), then
// appends trailing (if present) as the final argument. Broken out of
// ParseMessage so the argument cap is directly testable independent of any
// one command's arity.
func splitArgs(middle string, trailing *string) []string {
	var args []string
	if middle != "" {
		for _, p := range strings.Split(middle, " ") {
			if p == "" {
				continue
			}
			if len(args) == 14 {
				break
			}
			args = append(args, p)
		}
	}
	if trailing != nil {
		args = append(args, *trailing)
	}
	return args
}
