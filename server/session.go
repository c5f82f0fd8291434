package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/google/uuid"

	"chatforge.dev/chatforge/irc"
	"chatforge.dev/chatforge/transport"
)

// Session is a per-connection actor: it owns a Transport and dispatches
// incoming frames to the shared Server, tracking the NICK/USER
// registration handshake along the way. One Session is created per
// accepted connection and runs until its Transport's Inbound channel
// closes.
type Session struct {
	server   *Server
	tr       *transport.Transport
	peerAddr string
	peerIP   string
	resolver Resolver

	uuid     string // empty until registered
	nick     string
	user     string
	hostname string
	realName string
}

// NewSession builds a Session wired to tr and server. peerAddr is the full
// host:port the socket reports; the resolver boundary and the fallback
// hostname take the bare IP, per spec's "substitute the peer IP string"
// rule, not host:port.
func NewSession(server *Server, tr *transport.Transport, peerAddr string, resolver Resolver) *Session {
	return &Session{
		server:   server,
		tr:       tr,
		peerAddr: peerAddr,
		peerIP:   peerIP(peerAddr),
		resolver: resolver,
		hostname: peerIP(peerAddr),
	}
}

// peerIP strips the port off a host:port address. Addresses without a
// port (e.g. a test fake's RemoteAddr) are returned unchanged.
func peerIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// Run drives the session until the connection ends. It performs the
// hostname-lookup notice pair first, then dispatches every inbound frame
// until the Transport's Inbound channel closes, finally invoking the
// server's drop hook.
func (s *Session) Run(ctx context.Context) {
	s.resolveHostname(ctx)

	for frame := range s.tr.Inbound() {
		if frame.Err != nil {
			s.send(s.translateParseError(frame.Err))
			continue
		}
		s.dispatch(frame.Message)
	}

	s.server.DropClient(s.nick, s.uuid)
	log.Printf("session %s: closed", s.peerAddr)
}

// resolveHostname sends the two informational NOTICEs RFC clients expect
// around a reverse-DNS lookup, storing whatever name (or the peer IP on
// failure) as the session's hostname before registration can complete.
func (s *Session) resolveHostname(ctx context.Context) {
	s.sendNotice("*** Looking up your hostname...")

	names, err := s.resolver.ReverseLookup(ctx, s.peerIP)
	if err != nil || len(names) == 0 {
		s.sendNotice("*** Could not resolve your hostname; using your IP address instead")
		return
	}

	s.hostname = names[0]
	s.sendNotice("*** Found your hostname")
}

func (s *Session) sendNotice(text string) {
	target := "*"
	if s.nick != "" {
		target = s.nick
	}
	s.send(irc.FromCommand(irc.NewNotice(target, text)).WithPrefix(irc.Prefix{ServerOrNick: s.server.Prefix()}))
}

func (s *Session) send(msg irc.Message) {
	s.tr.Send(msg)
}

func (s *Session) isRegistered() bool { return s.uuid != "" }

// dispatch routes one parsed command through the registration state
// machine described in spec: a Fresh session (no uuid) only accepts
// NICK/USER toward completing registration; a Registered session ignores
// NICK (see the rename decision below) and dispatches everything else to
// the shared server.
func (s *Session) dispatch(msg irc.Message) {
	cmd := msg.Command

	switch cmd.Verb {
	case "NICK":
		s.handleNick(cmd)
	case "USER":
		s.handleUser(cmd)
	case "JOIN":
		s.handleJoin(cmd)
	case "PRIVMSG":
		s.handlePrivmsg(cmd)
	case "NOTICE":
		s.handleNotice(cmd)
	case "PASS":
		// Parsed but not required or checked; see spec's open question.
	default:
		s.reply(irc.ErrUnknownCommand(cmd.Verb))
	}
}

func (s *Session) handleNick(cmd irc.Command) {
	if s.isRegistered() {
		// Rename after registration is a deliberate no-op; see the design
		// notes on NICK rename.
		return
	}

	if s.server.SetNick(cmd.Nick, s.pendingUUID()) {
		s.nick = cmd.Nick
		s.maybeCompleteRegistration()
		return
	}

	s.reply(irc.ErrNickCollision(cmd.Nick))
}

// pendingUUID returns a stable per-connection identifier to reserve a nick
// under before registration completes and a permanent UUID is minted;
// the peer's host:port string is unique per open connection, and the
// "pending:" tag keeps it from colliding with a minted UUID's format.
func (s *Session) pendingUUID() string {
	return "pending:" + s.peerAddr
}

func (s *Session) handleUser(cmd irc.Command) {
	if s.isRegistered() {
		s.reply(irc.ErrAlreadyRegistered())
		return
	}

	s.user = cmd.User
	s.realName = cmd.RealName
	s.maybeCompleteRegistration()
}

// maybeCompleteRegistration finishes registration once both NICK and USER
// have been received: it mints the client's permanent UUID, re-claims the
// nick under that UUID (releasing the placeholder), registers the client
// entry, and sends the welcome + MOTD burst.
func (s *Session) maybeCompleteRegistration() {
	if s.nick == "" || s.user == "" || s.isRegistered() {
		return
	}

	id := uuid.NewString()

	s.server.ReleaseNick(s.nick, s.pendingUUID())
	if !s.server.SetNick(s.nick, id) {
		s.reply(irc.ErrNickCollision(s.nick))
		s.nick = ""
		return
	}

	s.uuid = id
	s.server.Register(id, s.nick, s.user, s.hostname, s.realName, s.send)

	s.completeRegistration()
}

func (s *Session) completeRegistration() {
	prefix := irc.Prefix{ServerOrNick: s.server.Prefix()}
	nickUhost := fmt.Sprintf("%s!%s@%s", s.nick, s.user, s.hostname)

	s.reply(irc.Welcome(nickUhost))
	s.reply(irc.YourHost(s.server.Name(), "chatforge"))
	s.reply(irc.Created(serverStartTime))
	s.reply(irc.MyInfo(s.server.Name(), "chatforge", "o", "n"))

	s.send(irc.FromReply(irc.MotdStart(s.server.Name())).WithPrefix(prefix))
	for _, line := range s.server.MOTD() {
		s.send(irc.FromReply(irc.Motd(line)).WithPrefix(prefix))
	}
	s.send(irc.FromReply(irc.MotdEnd()).WithPrefix(prefix))
}

func (s *Session) handleJoin(cmd irc.Command) {
	if !s.isRegistered() {
		s.reply(irc.ErrNotRegistered())
		return
	}

	replies, err := s.server.JoinChannel(s.uuid, cmd.Channels)
	if err != nil {
		s.reply(irc.ErrGeneric(cmd.Verb, nil, err.Error()))
		return
	}
	for _, r := range replies {
		s.reply(r)
	}
}

func (s *Session) handlePrivmsg(cmd irc.Command) {
	if !s.isRegistered() {
		s.reply(irc.ErrNotRegistered())
		return
	}

	target, ok := s.server.ClientByNick(cmd.Target)
	if !ok || target.Outbound == nil {
		s.reply(irc.ErrGeneric(cmd.Verb, []string{cmd.Target}, "No such nick/channel"))
		return
	}

	target.Outbound(irc.FromCommand(irc.NewPrivmsg(cmd.Target, cmd.Text, nil)).
		WithPrefix(irc.Prefix{Nick: s.nick, User: s.user, Host: s.hostname}))
}

func (s *Session) handleNotice(cmd irc.Command) {
	if !s.isRegistered() {
		return
	}

	target, ok := s.server.ClientByNick(cmd.Target)
	if !ok || target.Outbound == nil {
		return
	}

	target.Outbound(irc.FromCommand(irc.NewNotice(cmd.Target, cmd.Text)).
		WithPrefix(irc.Prefix{Nick: s.nick, User: s.user, Host: s.hostname}))
}

// reply wraps r with the server's prefix and sends it.
func (s *Session) reply(r irc.Reply) {
	s.send(irc.FromReply(r).WithPrefix(irc.Prefix{ServerOrNick: s.server.Prefix()}))
}

// translateParseError converts a non-fatal grammar error into the reply
// the spec's error-translation table names.
func (s *Session) translateParseError(err error) irc.Reply {
	switch e := err.(type) {
	case *irc.UnknownCommandError:
		return irc.ErrUnknownCommand(e.Verb)
	case *irc.NotEnoughArgumentsError:
		return irc.ErrNeedMoreParams(e.Verb)
	default:
		return irc.ErrGeneric("", nil, err.Error())
	}
}

// serverStartTime is stamped once when this package is initialized
// (time.Now is otherwise off limits in request-path code so every
// CREATED reply is reproducible within a run).
var serverStartTime = time.Now().Format(time.RFC1123)
