package transport

import (
	"bytes"
	"log"
	"time"

	"chatforge.dev/chatforge/irc"
)

// Transport wraps a Socket with the message codec, a Pinger, and an
// outbound queue, presenting to the session above it an Inbound channel
// (frames the peer sent, PING/PONG already swallowed) and a Send method
// for outbound messages. Two goroutines do the work, mirroring the
// teacher's readLoop/writeLoop split: one reads off the socket and ticks
// the pinger, one drains the outbound queue and writes.
type Transport struct {
	sock  Socket
	codec *irc.MessageCodec
	ping  *Pinger

	inbound chan irc.Frame
	outbox  chan irc.Message
	done    chan struct{}

	ioWait time.Duration
}

// New builds a Transport over sock. encoding is a WHATWG charset label;
// maxLine bounds each wire line. Send blocks once outboxSize messages are
// pending; spec's stated default is unbounded, so pass a large
// buffer (0 makes it synchronous, which callers generally don't want).
func New(sock Socket, encoding string, maxLine int, serverName string, ioWait time.Duration, outboxSize int) (*Transport, error) {
	return NewWithKeepalive(sock, encoding, maxLine, serverName, ioWait, outboxSize, DefaultPingInterval, DefaultPingTimeout)
}

// NewWithKeepalive is New with the ping interval and ping timeout broken
// out, for callers (the entry point) that source them from configuration
// instead of accepting the defaults.
func NewWithKeepalive(sock Socket, encoding string, maxLine int, serverName string, ioWait time.Duration, outboxSize int, pingInterval, pingTimeout time.Duration) (*Transport, error) {
	codec, err := irc.NewMessageCodec(encoding, maxLine)
	if err != nil {
		return nil, err
	}

	t := &Transport{
		sock:    sock,
		codec:   codec,
		ping:    NewPinger(serverName, pingInterval, pingTimeout),
		inbound: make(chan irc.Frame),
		outbox:  make(chan irc.Message, outboxSize),
		done:    make(chan struct{}),
		ioWait:  ioWait,
	}

	go t.writeLoop()
	go t.readLoop()

	return t, nil
}

// Inbound returns the channel of frames delivered from the peer, with
// PING/PONG already intercepted by the pinger. A Frame's Err is a non-fatal
// grammar error the session should translate to an error reply; it is
// closed when the connection ends, fatally or otherwise.
func (t *Transport) Inbound() <-chan irc.Frame {
	return t.inbound
}

// Send enqueues msg for delivery, drained in FIFO order. The outbox holds
// at most outboxSize messages: once it is full, Send blocks until there is
// room or the connection closes, so a slow reader can hold up the caller
// (callers size the outbox large enough that this rarely matters).
func (t *Transport) Send(msg irc.Message) {
	select {
	case t.outbox <- msg:
	case <-t.done:
	}
}

// Close tears the transport down, stopping both loops and closing the
// underlying socket.
func (t *Transport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return t.sock.Close()
}

// readLoop pulls bytes off the socket, decodes frames, ticks the pinger on
// every iteration, and delivers whatever the pinger doesn't swallow.
func (t *Transport) readLoop() {
	defer close(t.inbound)

	var buf bytes.Buffer
	raw := make([]byte, 4096)

	for {
		if reply, ok, err := t.ping.Tick(time.Now()); err != nil {
			log.Printf("transport %s: %s", t.sock.PeerAddr(), err)
			_ = t.Close()
			return
		} else if ok {
			t.Send(reply)
		}

		if err := t.sock.SetReadDeadline(time.Now().Add(t.ioWait)); err != nil {
			log.Printf("transport %s: set read deadline: %s", t.sock.PeerAddr(), err)
			_ = t.Close()
			return
		}

		n, err := t.sock.Read(raw)
		if n > 0 {
			buf.Write(raw[:n])
		}
		if err != nil {
			if netErrIsTimeout(err) {
				continue
			}
			_ = t.Close()
			return
		}

		frames, decErr := t.codec.Decode(&buf)
		for _, frame := range frames {
			if frame.Err == nil {
				if reply, swallowed := t.ping.Intercept(frame.Message); swallowed {
					if reply != nil {
						t.Send(*reply)
					}
					continue
				}
			}
			select {
			case t.inbound <- frame:
			case <-t.done:
				return
			}
		}
		if decErr != nil {
			log.Printf("transport %s: %s", t.sock.PeerAddr(), decErr)
			_ = t.Close()
			return
		}
	}
}

// writeLoop drains the outbox and writes each message to the socket,
// closing the connection on the first write error or once done fires.
func (t *Transport) writeLoop() {
	var dst bytes.Buffer
	for {
		select {
		case msg, ok := <-t.outbox:
			if !ok {
				return
			}
			dst.Reset()
			if err := t.codec.Encode(msg, &dst); err != nil {
				log.Printf("transport %s: encode: %s", t.sock.PeerAddr(), err)
				continue
			}
			if err := t.sock.SetWriteDeadline(time.Now().Add(t.ioWait)); err != nil {
				return
			}
			if _, err := t.sock.Write(dst.Bytes()); err != nil {
				log.Printf("transport %s: write: %s", t.sock.PeerAddr(), err)
				_ = t.Close()
				return
			}
		case <-t.done:
			return
		}
	}
}

func netErrIsTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	te, ok := err.(timeout)
	return ok && te.Timeout()
}
