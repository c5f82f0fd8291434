package irc

import (
	"bytes"

	"github.com/pkg/errors"
)

// LineCodec splits a byte stream into CRLF-terminated frames and decodes/
// encodes them through a pluggable character encoding, bounded by a maximum
// line length.
//
// It holds resume state across calls to Decode so a caller can feed it
// partial reads as they arrive off the wire.
type LineCodec struct {
	codec     Codec
	maxLength int
	nextIndex int
}

// NewLineCodec builds a LineCodec for the named WHATWG encoding label.
// maxLength excludes the CRLF terminator.
func NewLineCodec(label string, maxLength int) (*LineCodec, error) {
	codec, ok := Lookup(label)
	if !ok {
		return nil, &UnsupportedEncodingError{Label: label}
	}
	return &LineCodec{codec: codec, maxLength: maxLength}, nil
}

// Name returns the underlying encoding's canonical name.
func (l *LineCodec) Name() string { return l.codec.Name() }

// Decode attempts to extract one frame from buf, which the caller owns and
// mutates in place (consumed bytes are removed from the front).
//
// Returns ("", false, nil) when more bytes are needed. A non-nil error is
// always ErrMaxLineLengthExceeded and is fatal: buf has been cleared and the
// caller must tear down the connection.
func (l *LineCodec) Decode(buf *bytes.Buffer) (string, bool, error) {
	b := buf.Bytes()
	if len(b) == 0 {
		return "", false, nil
	}

	readTo := len(b)
	if l.maxLength+1 < readTo {
		readTo = l.maxLength + 1
	}

	// Back up one byte so a CR left at the end of the previous read still
	// pairs with an LF that arrives in this one.
	start := l.nextIndex
	if start > 0 {
		start--
	}

	idx := bytes.Index(b[start:readTo], []byte{'\r', '\n'})
	if idx == -1 {
		if len(b) > l.maxLength {
			buf.Reset()
			l.nextIndex = 0
			return "", false, ErrMaxLineLengthExceeded
		}
		l.nextIndex = len(b)
		return "", false, nil
	}

	frameEnd := start + idx
	line := make([]byte, frameEnd)
	copy(line, b[:frameEnd])
	buf.Next(frameEnd + 2) // consume the frame and its CRLF
	l.nextIndex = 0

	decoded := l.codec.Decode(line)
	return decoded, true, nil
}

// Encode encodes s with the codec's replacement policy, truncates at the
// first embedded CRLF, and appends the payload plus a CRLF to dst.
// Fails with ErrMaxLineLengthExceeded if the payload would exceed
// maxLength-2 bytes.
func (l *LineCodec) Encode(s string, dst *bytes.Buffer) error {
	payload := l.codec.Encode(s)

	if idx := bytes.Index(payload, []byte{'\r', '\n'}); idx != -1 {
		payload = payload[:idx]
	}

	if len(payload) > l.maxLength-2 {
		return errors.WithMessage(ErrMaxLineLengthExceeded, "encode")
	}

	dst.Write(payload)
	dst.WriteByte('\r')
	dst.WriteByte('\n')
	return nil
}
