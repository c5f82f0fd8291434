package irc

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Codec decodes and encodes a single line's bytes through one character
// encoding. Decode never fails: unmappable bytes become U+FFFD. Encode never
// fails either: unencodable runes become '?', per spec §4.2's "decode never
// fails, encode substitutes" rule.
type Codec interface {
	Name() string
	Decode(b []byte) string
	Encode(s string) []byte
}

// namedCodec adapts a golang.org/x/text/encoding.Encoding to Codec using
// encoding.ReplaceUnsupported so both directions are total functions.
type namedCodec struct {
	name string
	enc  encoding.Encoding
}

func (c namedCodec) Name() string { return c.name }

func (c namedCodec) Decode(b []byte) string {
	dec := encoding.ReplaceUnsupported(c.enc.NewDecoder())
	out, err := dec.Bytes(b)
	if err != nil {
		// ReplaceUnsupported maps unmappable input to U+FFFD rather than
		// failing, so this path is defensive only.
		return string(b)
	}
	return string(out)
}

func (c namedCodec) Encode(s string) []byte {
	enc := encoding.ReplaceUnsupported(c.enc.NewEncoder())
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// Lookup resolves a WHATWG encoding label (e.g. "utf-8", "iso-8859-1",
// "windows-1252") to a Codec. Matches spec §4.2's registry: label lookup is
// case-insensitive and accepts any alias htmlindex knows.
func Lookup(label string) (Codec, bool) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, false
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = label
	}
	return namedCodec{name: canonical, enc: enc}, true
}
