package irc

import (
	"bytes"

	"github.com/pkg/errors"
)

// Frame is one decoded line: either a parsed Message, or a non-fatal
// grammar error for that line (Err set, Message zero). Keeping both inside
// one successful decode result, rather than aborting the batch on the
// first bad line, is what lets a session reply with an error numeric and
// keep serving the connection.
type Frame struct {
	Message Message
	Err     error
}

// MessageCodec composes a LineCodec with the message grammar: Decode yields
// whole Frames, Encode accepts whole Messages.
type MessageCodec struct {
	lines *LineCodec
}

// NewMessageCodec builds a MessageCodec for the named character encoding,
// bounding each line at maxLength bytes.
func NewMessageCodec(label string, maxLength int) (*MessageCodec, error) {
	lines, err := NewLineCodec(label, maxLength)
	if err != nil {
		return nil, err
	}
	return &MessageCodec{lines: lines}, nil
}

// Decode pulls every complete frame buf currently holds.
//
// A parse error on one line (bad grammar, unknown command, wrong arity) is
// non-fatal: it comes back as a Frame with Err set, and decoding continues
// with whatever frames follow it. A line-length violation from the
// underlying LineCodec is fatal: it's returned as Decode's own error,
// decoding stops, and the caller must close the connection.
func (m *MessageCodec) Decode(buf *bytes.Buffer) ([]Frame, error) {
	var frames []Frame
	for {
		line, ok, err := m.lines.Decode(buf)
		if err != nil {
			return frames, errors.WithMessage(err, "decode line")
		}
		if !ok {
			return frames, nil
		}
		if line == "" {
			continue
		}

		msg, err := ParseMessage(line)
		if err != nil {
			frames = append(frames, Frame{Err: err})
			continue
		}
		frames = append(frames, Frame{Message: msg})
	}
}

// Encode serializes msg and appends it, CRLF-terminated, to dst.
func (m *MessageCodec) Encode(msg Message, dst *bytes.Buffer) error {
	return m.lines.Encode(msg.String(), dst)
}
