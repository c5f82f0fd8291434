package server

import (
	"sync"

	"chatforge.dev/chatforge/irc"
)

// ClientEntry is one registered client's shared-visible state: the data
// other clients' commands (JOIN, PRIVMSG) need to resolve a UUID to a
// sendable identity.
type ClientEntry struct {
	UUID     string
	Nick     string
	User     string
	Hostname string
	RealName string

	// Outbound is how other parts of the server deliver a message to this
	// client; it is never read from here, only sent to.
	Outbound func(irc.Message)

	// joinedChannels is the set of channel names (canonical form) this
	// client currently belongs to, used to clean up on drop.
	joinedChannels map[string]struct{}
}

// ErrInvalidUUID is returned by operations keyed on a UUID the registry
// doesn't recognize.
type ErrInvalidUUID struct{ UUID string }

func (e *ErrInvalidUUID) Error() string { return "invalid uuid: " + e.UUID }

// Server is the set of registries shared by every connected session:
// the claimed-nick set, the client-by-UUID table, and the channel-by-name
// table. Each is guarded by its own RWMutex rather than one server-wide
// lock, so unrelated connections never contend on each other's single-key
// reads; compound operations (like join) take at most one channel's
// effective lock at a time to avoid cross-registry deadlock.
type Server struct {
	prefix   string
	name     string
	motd     []string

	nicksMu sync.RWMutex
	nicks   map[string]string // folded nick -> uuid

	clientsMu sync.RWMutex
	clients   map[string]*ClientEntry // uuid -> entry

	channelsMu sync.RWMutex
	channels   map[string]*Channel // folded name -> channel

	lineBudget int
}

// New builds an empty Server. lineBudget is the wire line-length budget
// used to paginate NAMES replies.
func New(prefix, name string, motd []string, lineBudget int) *Server {
	return &Server{
		prefix:     prefix,
		name:       name,
		motd:       motd,
		nicks:      make(map[string]string),
		clients:    make(map[string]*ClientEntry),
		channels:   make(map[string]*Channel),
		lineBudget: lineBudget,
	}
}

// Prefix returns the server's own prefix, used when the session sends a
// server-originated reply.
func (s *Server) Prefix() string { return s.prefix }

// namesBudget is the byte budget ReplyNames must pack each NAMREPLY into
// so that the fully-assembled wire line (this server's prefix, a leading
// ':', the separating space, and CRLF all included) never exceeds
// lineBudget. The session always wraps a NAMREPLY with ":" + Prefix() +
// " " before sending, so that overhead has to come off the top here
// rather than inside Channel, which doesn't know about prefixes.
func (s *Server) namesBudget() int {
	return s.lineBudget - 2 - (len(s.prefix) + 2)
}

// Name returns the server's name, used in welcome-burst replies.
func (s *Server) Name() string { return s.name }

// MOTD returns the configured message-of-the-day lines.
func (s *Server) MOTD() []string { return s.motd }

// ContainsNick reports whether nick (under the scandinavian fold) is
// currently claimed.
func (s *Server) ContainsNick(nick string) bool {
	folded := foldNick(nick)
	s.nicksMu.RLock()
	defer s.nicksMu.RUnlock()
	_, ok := s.nicks[folded]
	return ok
}

// SetNick atomically claims nick for uuid, returning false if it was
// already taken by someone else. A client re-claiming its own already-held
// nick is also reported as not-newly-added.
func (s *Server) SetNick(nick, uuid string) (added bool) {
	folded := foldNick(nick)
	s.nicksMu.Lock()
	defer s.nicksMu.Unlock()
	if _, ok := s.nicks[folded]; ok {
		return false
	}
	s.nicks[folded] = uuid
	return true
}

// ReleaseNick frees nick so another client may claim it. No-op if nick
// isn't currently claimed by uuid.
func (s *Server) ReleaseNick(nick, uuid string) {
	folded := foldNick(nick)
	s.nicksMu.Lock()
	defer s.nicksMu.Unlock()
	if s.nicks[folded] == uuid {
		delete(s.nicks, folded)
	}
}

// Register creates a client entry keyed by uuid. Caller must have already
// claimed nick via SetNick.
func (s *Server) Register(uuid, nick, user, hostname, realName string, outbound func(irc.Message)) {
	entry := &ClientEntry{
		UUID:           uuid,
		Nick:           nick,
		User:           user,
		Hostname:       hostname,
		RealName:       realName,
		Outbound:       outbound,
		joinedChannels: make(map[string]struct{}),
	}
	s.clientsMu.Lock()
	s.clients[uuid] = entry
	s.clientsMu.Unlock()
}

// Client looks up a client entry by UUID.
func (s *Server) Client(uuid string) (*ClientEntry, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	c, ok := s.clients[uuid]
	return c, ok
}

// ClientByNick looks up a client entry by nick (folded).
func (s *Server) ClientByNick(nick string) (*ClientEntry, bool) {
	folded := foldNick(nick)
	s.nicksMu.RLock()
	uuid, ok := s.nicks[folded]
	s.nicksMu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.Client(uuid)
}

// JoinChannel joins uuid to each named channel, creating channels that
// don't yet exist with uuid as their first oper. For each channel it
// returns the channel's topic reply followed by its NAMES reply sequence,
// in channel order.
func (s *Server) JoinChannel(uuid string, names []string) ([]irc.Reply, error) {
	client, ok := s.Client(uuid)
	if !ok {
		return nil, &ErrInvalidUUID{UUID: uuid}
	}

	var replies []irc.Reply
	for _, name := range names {
		folded := foldNick(name)

		s.channelsMu.Lock()
		ch, exists := s.channels[folded]
		if !exists {
			ch = NewChannel(name, ChannelUser{UUID: uuid, Nick: client.Nick})
			s.channels[folded] = ch
		} else if !ch.HasMember(uuid) {
			ch.AddMember(uuid, client.Nick)
		}
		s.channelsMu.Unlock()

		s.clientsMu.Lock()
		client.joinedChannels[folded] = struct{}{}
		s.clientsMu.Unlock()

		replies = append(replies, ch.ReplyTopic())
		replies = append(replies, ch.ReplyNames(s.namesBudget())...)
	}

	return replies, nil
}

// DropClient removes nick and uuid from every registry, including every
// channel uuid belonged to, reaping channels left empty. Idempotent: a
// blank nick or uuid is a no-op.
func (s *Server) DropClient(nick, uuid string) {
	if nick == "" || uuid == "" {
		return
	}

	s.ReleaseNick(nick, uuid)

	s.clientsMu.Lock()
	client, ok := s.clients[uuid]
	delete(s.clients, uuid)
	s.clientsMu.Unlock()
	if !ok {
		return
	}

	for folded := range client.joinedChannels {
		s.channelsMu.Lock()
		if ch, ok := s.channels[folded]; ok {
			if empty := ch.RemoveMember(uuid); empty {
				delete(s.channels, folded)
			}
		}
		s.channelsMu.Unlock()
	}
}
