// Package server owns the shared registries (nicknames, clients, channels)
// and the per-connection session state machine layered on transport.
package server

import (
	"strings"

	"chatforge.dev/chatforge/irc"
)

// ChannelMode holds a channel's boolean and scalar settings. Defaults
// match the original implementation's: topic changes and outside messages
// are restricted unless explicitly opened up.
type ChannelMode struct {
	Private           bool
	Secret            bool
	InviteOnly        bool
	TopicOperOnly     bool
	NoOutsideMessages bool
	Limit             int
	BanMasks          []string
	Key               string
}

// DefaultChannelMode returns the settings a freshly created channel starts
// with.
func DefaultChannelMode() ChannelMode {
	return ChannelMode{
		TopicOperOnly:     true,
		NoOutsideMessages: true,
	}
}

// ChannelUser is one member of a channel's roster.
type ChannelUser struct {
	UUID   string
	Nick   string
	IsOper bool
	Voice  bool
}

// String renders the member's NAMES display form: "@nick" for an oper,
// "+nick" for voice, bare nick otherwise.
func (u ChannelUser) String() string {
	switch {
	case u.IsOper:
		return "@" + u.Nick
	case u.Voice:
		return "+" + u.Nick
	default:
		return u.Nick
	}
}

// Channel is a named group of clients with a topic and mode settings. A
// channel only exists while it has at least one member; the registry is
// responsible for reaping it otherwise.
type Channel struct {
	Name    string
	Topic   string
	Mode    ChannelMode
	members []ChannelUser
}

// NewChannel creates a channel with creator as its sole member and oper.
func NewChannel(name string, creator ChannelUser) *Channel {
	creator.IsOper = true
	return &Channel{
		Name:    name,
		Mode:    DefaultChannelMode(),
		members: []ChannelUser{creator},
	}
}

// AddMember appends a non-oper member. Caller must not add a UUID twice.
func (c *Channel) AddMember(uuid, nick string) {
	c.members = append(c.members, ChannelUser{UUID: uuid, Nick: nick})
}

// RemoveMember drops uuid from the roster, reporting whether the channel
// is now empty.
func (c *Channel) RemoveMember(uuid string) (empty bool) {
	for i, m := range c.members {
		if m.UUID == uuid {
			c.members = append(c.members[:i], c.members[i+1:]...)
			break
		}
	}
	return len(c.members) == 0
}

// HasMember reports whether uuid is currently a member.
func (c *Channel) HasMember(uuid string) bool {
	for _, m := range c.members {
		if m.UUID == uuid {
			return true
		}
	}
	return false
}

// ReplyTopic returns TOPIC if one is set, else NOTOPIC.
func (c *Channel) ReplyTopic() irc.Reply {
	if c.Topic == "" {
		return irc.NoTopic(c.Name)
	}
	return irc.TopicReply(c.Name, c.Topic)
}

// ReplyNames packs the roster into one or more NAMREPLY messages such
// that each serialized reply (without a prefix) fits within budget bytes.
// The caller passes the line budget already reduced by the CRLF and by the
// prefix it will attach at send time, so the full wire line fits too. It
// always ends with a trailing ENDOFNAMES.
//
// A single member whose display alone would overflow budget is placed in
// its own page regardless; we don't truncate nicks here (spec leaves that
// to whatever layer enforces nick length at registration time).
func (c *Channel) ReplyNames(budget int) []irc.Reply {
	var replies []irc.Reply
	var page []string
	pageLen := namReplyOverhead(c.Name)

	flush := func() {
		if len(page) > 0 {
			replies = append(replies, irc.NamReply(c.Name, page))
			page = nil
			pageLen = namReplyOverhead(c.Name)
		}
	}

	for _, m := range c.members {
		disp := m.String()
		added := len(disp)
		if len(page) > 0 {
			added++ // joining space
		}
		if len(page) > 0 && pageLen+added > budget {
			flush()
			added = len(disp)
		}
		page = append(page, disp)
		pageLen += added
	}
	flush()

	replies = append(replies, irc.EndOfNames(c.Name))
	return replies
}

// namReplyOverhead is the byte count of a NAMREPLY line with an empty
// names list: "353 " + channel + " :". The serialized prefix is not counted
// here; ReplyNames's caller accounts for it by passing a budget already
// reduced for the prefix it will attach.
func namReplyOverhead(channel string) int {
	return len("353 ") + len(channel) + len(" :")
}

// foldNick applies the scandinavian case fold IRC nick comparisons use:
// {|}~ fold to [\]^ in addition to ASCII lower-casing.
func foldNick(nick string) string {
	lower := strings.ToLower(nick)
	return strings.Map(func(r rune) rune {
		switch r {
		case '{':
			return '['
		case '}':
			return ']'
		case '|':
			return '\\'
		case '~':
			return '^'
		default:
			return r
		}
	}, lower)
}
