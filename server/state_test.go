package server

import (
	"testing"

	"chatforge.dev/chatforge/irc"
)

func newTestServer() *Server {
	return New("irc.test", "irc.test", []string{"welcome"}, 512)
}

func TestSetNickClaimAndRelease(t *testing.T) {
	s := newTestServer()

	if !s.SetNick("alice", "uuid-1") {
		t.Fatal("expected first claim to succeed")
	}
	if s.SetNick("alice", "uuid-2") {
		t.Fatal("expected second claim to fail")
	}
	if !s.ContainsNick("Alice") {
		t.Fatal("expected case-insensitive containment")
	}

	s.ReleaseNick("alice", "uuid-1")
	if s.ContainsNick("alice") {
		t.Fatal("expected nick released")
	}
	if !s.SetNick("alice", "uuid-2") {
		t.Fatal("expected claim to succeed after release")
	}
}

func TestNickScandinavianFold(t *testing.T) {
	s := newTestServer()
	if !s.SetNick("foo{bar}", "uuid-1") {
		t.Fatal("expected claim to succeed")
	}
	if !s.ContainsNick("foo[bar]") {
		t.Fatal("expected scandinavian-folded nick to collide")
	}
}

func TestRegisterAndLookup(t *testing.T) {
	s := newTestServer()
	s.SetNick("alice", "uuid-1")
	s.Register("uuid-1", "alice", "auser", "host.example.org", "Alice Example", func(irc.Message) {})

	c, ok := s.Client("uuid-1")
	if !ok || c.Nick != "alice" {
		t.Fatalf("Client lookup = %+v, ok=%v", c, ok)
	}

	c2, ok := s.ClientByNick("ALICE")
	if !ok || c2.UUID != "uuid-1" {
		t.Fatalf("ClientByNick lookup = %+v, ok=%v", c2, ok)
	}
}

func TestJoinChannelCreatesAndReplies(t *testing.T) {
	s := newTestServer()
	s.SetNick("alice", "uuid-1")
	s.Register("uuid-1", "alice", "auser", "host", "Alice", func(irc.Message) {})

	replies, err := s.JoinChannel("uuid-1", []string{"#chan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replies) < 3 {
		t.Fatalf("expected at least topic+names+end, got %d", len(replies))
	}
	if replies[0].Numeric != irc.ReplyNoTopic {
		t.Fatalf("expected NOTOPIC first, got %+v", replies[0])
	}
	last := replies[len(replies)-1]
	if last.Numeric != irc.ReplyEndOfNames {
		t.Fatalf("expected ENDOFNAMES last, got %+v", last)
	}
}

func TestJoinChannelInvalidUUID(t *testing.T) {
	s := newTestServer()
	_, err := s.JoinChannel("no-such-uuid", []string{"#chan"})
	if _, ok := err.(*ErrInvalidUUID); !ok {
		t.Fatalf("expected *ErrInvalidUUID, got %T (%v)", err, err)
	}
}

func TestDropClientRemovesFromChannel(t *testing.T) {
	s := newTestServer()
	s.SetNick("alice", "uuid-1")
	s.Register("uuid-1", "alice", "auser", "host", "Alice", func(irc.Message) {})
	if _, err := s.JoinChannel("uuid-1", []string{"#chan"}); err != nil {
		t.Fatalf("join error: %v", err)
	}

	s.DropClient("alice", "uuid-1")

	if s.ContainsNick("alice") {
		t.Fatal("expected nick released on drop")
	}
	if _, ok := s.Client("uuid-1"); ok {
		t.Fatal("expected client entry removed on drop")
	}

	s.channelsMu.RLock()
	_, exists := s.channels["#chan"]
	s.channelsMu.RUnlock()
	if exists {
		t.Fatal("expected empty channel reaped on last member drop")
	}
}

func TestDropClientIdempotent(t *testing.T) {
	s := newTestServer()
	s.DropClient("", "")
	s.DropClient("alice", "no-such-uuid")
}
