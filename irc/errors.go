// Package irc implements the wire codec and message grammar of the IRC
// protocol: CRLF-framed, charset-aware line encoding and the typed
// command/reply message model built on top of it.
package irc

import "github.com/pkg/errors"

// UnsupportedEncodingError is returned by NewLineCodec when the requested
// character encoding label isn't known to the registry.
type UnsupportedEncodingError struct {
	Label string
}

func (e *UnsupportedEncodingError) Error() string {
	return "unsupported encoding: " + e.Label
}

// ErrMaxLineLengthExceeded is returned by LineCodec.Decode when no CRLF is
// found within the configured budget, and by LineCodec.Encode when the
// payload wouldn't fit. It is fatal to the connection: the caller must tear
// the connection down, not retry.
var ErrMaxLineLengthExceeded = errors.New("maximum line length exceeded")

// ErrPingTimeout is returned by the pinger when a PING goes unanswered past
// its deadline. Fatal to the connection.
var ErrPingTimeout = errors.New("ping timeout")

// ErrEmptyMessage is returned by ParseMessage for an empty input line.
var ErrEmptyMessage = errors.New("empty message")

// ErrInvalidCommand is returned by ParseMessage when, after the prefix is
// lifted, the command position holds a ':'-led token instead of a verb. A
// prefix with nothing at all after it yields *UnknownCommandError instead.
var ErrInvalidCommand = errors.New("invalid command")

// NotEnoughArgumentsError is returned when a command doesn't have the
// number of arguments its grammar requires.
type NotEnoughArgumentsError struct {
	Verb string
}

func (e *NotEnoughArgumentsError) Error() string {
	return "not enough arguments for command " + e.Verb
}

// UnknownCommandError is returned for a verb with no known arity/shape.
type UnknownCommandError struct {
	Verb string
}

func (e *UnknownCommandError) Error() string {
	return "unknown command " + e.Verb
}

// ErrCommandParse is returned when an argument fails to parse into the type
// its command expects (e.g. a non-numeric NICK hop count).
var ErrCommandParse = errors.New("command parse error")
