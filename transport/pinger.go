package transport

import (
	"time"

	"chatforge.dev/chatforge/irc"
)

const (
	// DefaultPingInterval is how often an idle connection is probed.
	DefaultPingInterval = 120 * time.Second
	// DefaultPingTimeout is how long a client has to answer a PING before
	// the connection is considered dead.
	DefaultPingTimeout = 30 * time.Second
)

// Pinger tracks keepalive state for one connection. It has no goroutine of
// its own: Tick is called by the Transport's read loop, translating Go's
// timer-based scheduling into the same "poll, observe fired timers" shape
// the teacher's connections drive from a single read loop.
type Pinger struct {
	serverName string
	interval   time.Duration
	timeout    time.Duration
	enabled    bool

	nextPing time.Time
	deadline time.Time
	armed    bool
}

// NewPinger builds a Pinger that will identify outgoing PINGs as coming
// from serverName.
func NewPinger(serverName string, interval, timeout time.Duration) *Pinger {
	return &Pinger{
		serverName: serverName,
		interval:   interval,
		timeout:    timeout,
		enabled:    true,
		nextPing:   time.Now().Add(interval),
	}
}

// Tick advances the pinger's state as of now. If the pending PONG deadline
// has elapsed, it returns ErrPingTimeout: fatal, the caller must tear the
// connection down. Otherwise, if the periodic timer has elapsed and the
// pinger is enabled, it returns a PING message to send and arms the
// deadline (if not already armed).
func (p *Pinger) Tick(now time.Time) (irc.Message, bool, error) {
	if p.armed && !p.deadline.IsZero() && !now.Before(p.deadline) {
		return irc.Message{}, false, irc.ErrPingTimeout
	}

	if p.enabled && !now.Before(p.nextPing) {
		p.nextPing = now.Add(p.interval)
		if !p.armed {
			p.armed = true
			p.deadline = now.Add(p.timeout)
		}
		return irc.FromCommand(irc.NewPing(p.serverName, nil)), true, nil
	}

	return irc.Message{}, false, nil
}

// Intercept implements the pinger's message-interception role: given an
// incoming message, it reports whether the message was swallowed (a PING
// answered with a PONG enqueued on reply, or a PONG clearing the deadline)
// and, when swallowed, the reply to enqueue (nil for PONG).
func (p *Pinger) Intercept(msg irc.Message) (reply *irc.Message, swallowed bool) {
	if !msg.IsCommand {
		return nil, false
	}

	switch msg.Command.Verb {
	case "PING":
		pong := irc.FromCommand(irc.NewPong(msg.Command.Token, nil))
		return &pong, true
	case "PONG":
		p.armed = false
		p.deadline = time.Time{}
		return nil, true
	default:
		return nil, false
	}
}
