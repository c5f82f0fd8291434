package irc

import (
	"strconv"
	"strings"
)

// Command is a parsed protocol verb. Exactly one of the typed fields below
// is meaningful, selected by Verb.
type Command struct {
	Verb string

	// PASS
	Password string

	// NICK
	Nick string
	Hops *int

	// USER
	User     string
	Hostname string
	Server   string
	RealName string

	// PRIVMSG / NOTICE
	Target string
	Text   string
	CC     []string // PRIVMSG only

	// PING / PONG
	Token  string
	Token2 *string

	// JOIN
	Channels []string
	Keys     []string

	// RAW
	Raw string
}

// NewPass builds a PASS command.
func NewPass(password string) Command { return Command{Verb: "PASS", Password: password} }

// NewNick builds a NICK command.
func NewNick(nick string, hops *int) Command { return Command{Verb: "NICK", Nick: nick, Hops: hops} }

// NewUser builds a USER command.
func NewUser(user, hostname, server, realName string) Command {
	return Command{Verb: "USER", User: user, Hostname: hostname, Server: server, RealName: realName}
}

// NewPrivmsg builds a PRIVMSG command.
func NewPrivmsg(target, text string, cc []string) Command {
	return Command{Verb: "PRIVMSG", Target: target, Text: text, CC: cc}
}

// NewNotice builds a NOTICE command.
func NewNotice(target, text string) Command {
	return Command{Verb: "NOTICE", Target: target, Text: text}
}

// NewPing builds a PING command.
func NewPing(token string, token2 *string) Command {
	return Command{Verb: "PING", Token: token, Token2: token2}
}

// NewPong builds a PONG command.
func NewPong(token string, token2 *string) Command {
	return Command{Verb: "PONG", Token: token, Token2: token2}
}

// NewJoin builds a JOIN command.
func NewJoin(channels, keys []string) Command {
	return Command{Verb: "JOIN", Channels: channels, Keys: keys}
}

// NewRaw builds a RAW command, serialized as its text verbatim. ParseCommand
// never produces one: an unmodelled verb is an *UnknownCommandError.
func NewRaw(text string) Command { return Command{Verb: "RAW", Raw: text} }

// ParseCommand builds a Command from an upper-cased verb and its argument
// list (the trailing argument, if any, already appended as the last
// element). Arity follows spec §4.3's table.
func ParseCommand(verb string, args []string) (Command, error) {
	verb = strings.ToUpper(verb)

	switch verb {
	case "PASS":
		if len(args) != 1 {
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}
		return NewPass(args[0]), nil

	case "NICK":
		switch len(args) {
		case 1:
			return NewNick(args[0], nil), nil
		case 2:
			hops, err := strconv.Atoi(args[1])
			if err != nil {
				return Command{}, ErrCommandParse
			}
			return NewNick(args[0], &hops), nil
		default:
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}

	case "USER":
		if len(args) != 4 {
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}
		return NewUser(args[0], args[1], args[2], args[3]), nil

	case "NOTICE":
		if len(args) != 2 {
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}
		return NewNotice(args[0], args[1]), nil

	case "PING":
		switch len(args) {
		case 1:
			return NewPing(args[0], nil), nil
		case 2:
			t := args[1]
			return NewPing(args[0], &t), nil
		default:
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}

	case "PONG":
		switch len(args) {
		case 1:
			return NewPong(args[0], nil), nil
		case 2:
			t := args[1]
			return NewPong(args[0], &t), nil
		default:
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}

	case "PRIVMSG":
		if len(args) != 2 {
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}
		if strings.Contains(args[0], ",") {
			parts := strings.Split(args[0], ",")
			return NewPrivmsg(parts[0], args[1], parts[1:]), nil
		}
		return NewPrivmsg(args[0], args[1], nil), nil

	case "JOIN":
		if len(args) != 1 && len(args) != 2 {
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}
		channels := strings.Split(args[0], ",")
		if len(channels) == 0 || (len(channels) == 1 && channels[0] == "") {
			return Command{}, &NotEnoughArgumentsError{Verb: verb}
		}
		var keys []string
		if len(args) == 2 {
			keys = strings.Split(args[1], ",")
			if len(keys) == 0 || (len(keys) == 1 && keys[0] == "") {
				return Command{}, &NotEnoughArgumentsError{Verb: verb}
			}
		}
		return NewJoin(channels, keys), nil

	default:
		return Command{}, &UnknownCommandError{Verb: verb}
	}
}

// Name returns the command's verb, used in error replies that report which
// command triggered them.
func (c Command) Name() string { return c.Verb }

// args returns the command's argument list in wire order, for serialization.
func (c Command) args() []string {
	switch c.Verb {
	case "PASS":
		return []string{c.Password}
	case "NICK":
		if c.Hops == nil {
			return []string{c.Nick}
		}
		return []string{c.Nick, strconv.Itoa(*c.Hops)}
	case "USER":
		return []string{c.User, c.Hostname, c.Server, c.RealName}
	case "NOTICE":
		return []string{c.Target, c.Text}
	case "PING":
		if c.Token2 == nil {
			return []string{c.Token}
		}
		return []string{c.Token, *c.Token2}
	case "PONG":
		if c.Token2 == nil {
			return []string{c.Token}
		}
		return []string{c.Token, *c.Token2}
	case "PRIVMSG":
		target := c.Target
		if len(c.CC) > 0 {
			target = target + "," + strings.Join(c.CC, ",")
		}
		return []string{target, c.Text}
	case "JOIN":
		args := []string{strings.Join(c.Channels, ",")}
		if len(c.Keys) > 0 {
			args = append(args, strings.Join(c.Keys, ","))
		}
		return args
	case "RAW":
		return nil
	default:
		return nil
	}
}

// String serializes the command to its wire form (without a prefix or
// trailing CRLF).
func (c Command) String() string {
	if c.Verb == "RAW" {
		return c.Raw
	}
	return stringify(c.Verb, c.args())
}

// stringify joins a command name and its arguments using the trailing-
// argument rule: the last arg is prefixed with ':' iff it is empty,
// contains a space, or begins with ':'.
func stringify(cmd string, args []string) string {
	if len(args) == 0 {
		return cmd
	}

	last := args[len(args)-1]
	middle := args[:len(args)-1]

	s := cmd
	if len(middle) > 0 {
		s += " " + strings.Join(middle, " ")
	}

	needsColon := last == "" || strings.Contains(last, " ") || strings.HasPrefix(last, ":")
	if needsColon {
		s += " :" + last
	} else {
		s += " " + last
	}
	return s
}
