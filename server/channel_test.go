package server

import "testing"

func TestChannelUserDisplay(t *testing.T) {
	tests := []struct {
		u    ChannelUser
		want string
	}{
		{ChannelUser{Nick: "pooh", IsOper: true}, "@pooh"},
		{ChannelUser{Nick: "pooh"}, "pooh"},
		{ChannelUser{Nick: "pooh", Voice: true}, "+pooh"},
	}
	for _, tt := range tests {
		if got := tt.u.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNewChannelCreatorIsOper(t *testing.T) {
	ch := NewChannel("#test", ChannelUser{UUID: "u1", Nick: "pooh"})
	replies := ch.ReplyNames(512)
	if len(replies) != 2 {
		t.Fatalf("expected NAMREPLY + ENDOFNAMES, got %d", len(replies))
	}
	// Grounded on original_source/src/proto/reply.rs's name_reply test.
	if replies[0].String() != "353 #test :@pooh" {
		t.Fatalf("got %q", replies[0].String())
	}
}

func TestChannelAddAndRemoveMember(t *testing.T) {
	ch := NewChannel("#test", ChannelUser{UUID: "u1", Nick: "pooh"})
	ch.AddMember("u2", "alice")

	if !ch.HasMember("u2") {
		t.Fatal("expected u2 to be a member")
	}

	empty := ch.RemoveMember("u1")
	if empty {
		t.Fatal("channel should not be empty with one member remaining")
	}
	empty = ch.RemoveMember("u2")
	if !empty {
		t.Fatal("channel should be empty after removing last member")
	}
}

func TestReplyTopicDefaultsToNoTopic(t *testing.T) {
	ch := NewChannel("#test", ChannelUser{UUID: "u1", Nick: "pooh"})
	r := ch.ReplyTopic()
	if r.String() != "331 #test :No topic is set" {
		t.Fatalf("got %q", r.String())
	}

	ch.Topic = "welcome"
	r = ch.ReplyTopic()
	if r.String() != "332 #test :welcome" {
		t.Fatalf("got %q", r.String())
	}
}

func TestReplyNamesPaginatesOnBudget(t *testing.T) {
	ch := NewChannel("#test", ChannelUser{UUID: "u0", Nick: "pooh"})
	for i := 0; i < 50; i++ {
		ch.AddMember("u"+string(rune('a'+i%26)), "memberNameNumber0123456789")
	}

	// A tiny budget forces multiple NAMREPLY pages.
	replies := ch.ReplyNames(40)
	if len(replies) < 3 {
		t.Fatalf("expected multiple NAMREPLY pages plus ENDOFNAMES, got %d", len(replies))
	}
	last := replies[len(replies)-1]
	if last.Numeric != 366 {
		t.Fatalf("expected ENDOFNAMES last, got %+v", last)
	}
	for _, r := range replies[:len(replies)-1] {
		if len(r.String()) > 40 {
			t.Errorf("NAMREPLY line exceeds budget: %q (%d bytes)", r.String(), len(r.String()))
		}
	}
}

func TestFoldNick(t *testing.T) {
	if foldNick("Foo{Bar}") != foldNick("FOO[BAR]") {
		t.Error("expected scandinavian fold to equate {}  with []")
	}
	if foldNick("Alice") != "alice" {
		t.Errorf("foldNick(Alice) = %q", foldNick("Alice"))
	}
}
