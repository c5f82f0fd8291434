package irc

import "testing"

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want Prefix
	}{
		{"irc.example.org", Prefix{ServerOrNick: "irc.example.org"}},
		{"alice", Prefix{ServerOrNick: "alice"}},
		{"alice!user@host.example.org", Prefix{Nick: "alice", User: "user", Host: "host.example.org"}},
		{"alice!user", Prefix{Nick: "alice", User: "user"}},
		{"alice@host.example.org", Prefix{Nick: "alice", Host: "host.example.org"}},
	}

	for _, tt := range tests {
		got := ParsePrefix(tt.in)
		if got != tt.want {
			t.Errorf("ParsePrefix(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestPrefixStringRoundTrip(t *testing.T) {
	tests := []string{
		"irc.example.org",
		"alice",
		"alice!user@host.example.org",
	}

	for _, in := range tests {
		p := ParsePrefix(in)
		if got := p.String(); got != in {
			t.Errorf("ParsePrefix(%q).String() = %q, want %q", in, got, in)
		}
	}
}

func TestIsServerOrNick(t *testing.T) {
	if !ParsePrefix("irc.example.org").IsServerOrNick() {
		t.Error("bare token should be IsServerOrNick")
	}
	if ParsePrefix("alice!user@host").IsServerOrNick() {
		t.Error("nick triple should not be IsServerOrNick")
	}
}
