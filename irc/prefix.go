package irc

import "strings"

// Prefix identifies the sender of a Message: either a bare server-or-nick
// token, or a full nick!user@host triple.
//
// The wire form cannot always distinguish a server name from a bare nick,
// so ServerOrNick carries both meanings; see spec §9 "Raw and server-or-nick
// prefix."
type Prefix struct {
	// ServerOrNick holds the token when there is no "!"/"@" breakdown.
	// Empty when Nick/User/Host are set instead.
	ServerOrNick string

	Nick string
	User string
	Host string
}

// IsServerOrNick reports whether this prefix is the undifferentiated form.
func (p Prefix) IsServerOrNick() bool {
	return p.Nick == "" && p.User == "" && p.Host == ""
}

// ParsePrefix parses a raw prefix token (without the leading ':').
//
// A small state machine keyed on '!' and '@': the name runs until one of
// those separators; '!' transitions to user, '@' (from either name or user)
// transitions to host. A period inside the name while still in the name
// phase hints at a server name when no '!'/'@' follows, but since Prefix
// only distinguishes Nickname-triple from ServerOrNick by whether any
// separator appeared, that hint doesn't change the result shape.
func ParsePrefix(s string) Prefix {
	const (
		activeName = iota
		activeUser
		activeHost
	)

	var name, user, host strings.Builder
	active := activeName
	sawSeparator := false

	for _, c := range s {
		switch {
		case c == '!' && active == activeName:
			active = activeUser
			sawSeparator = true
		case c == '@' && active != activeHost:
			active = activeHost
			sawSeparator = true
		default:
			switch active {
			case activeName:
				name.WriteRune(c)
			case activeUser:
				user.WriteRune(c)
			case activeHost:
				host.WriteRune(c)
			}
		}
	}

	if !sawSeparator {
		return Prefix{ServerOrNick: name.String()}
	}
	return Prefix{Nick: name.String(), User: user.String(), Host: host.String()}
}

// String renders the prefix back to wire form.
func (p Prefix) String() string {
	if p.IsServerOrNick() {
		return p.ServerOrNick
	}
	s := p.Nick
	if p.User != "" {
		s += "!" + p.User
	}
	if p.Host != "" {
		s += "@" + p.Host
	}
	return s
}
