package transport

import (
	"net"
	"testing"
	"time"

	"chatforge.dev/chatforge/irc"
)

func testMessage() irc.Message {
	return irc.FromReply(irc.Welcome("alice")).WithPrefix(irc.Prefix{ServerOrNick: "irc.test"})
}

type pipeSocket struct {
	net.Conn
}

func (p pipeSocket) PeerAddr() string { return p.Conn.RemoteAddr().String() }

func newPipe() (Socket, net.Conn) {
	a, b := net.Pipe()
	return pipeSocket{Conn: a}, b
}

func TestTransportDeliversMessage(t *testing.T) {
	sock, peer := newPipe()
	defer peer.Close()

	tr, err := New(sock, "utf-8", 512, "irc.test", 2*time.Second, 16)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer tr.Close()

	go peer.Write([]byte("NICK alice\r\n"))

	select {
	case frame := <-tr.Inbound():
		if frame.Err != nil || frame.Message.Command.Verb != "NICK" {
			t.Fatalf("got %+v", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestTransportSwallowsPing(t *testing.T) {
	sock, peer := newPipe()
	defer peer.Close()

	tr, err := New(sock, "utf-8", 512, "irc.test", 2*time.Second, 16)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer tr.Close()

	go peer.Write([]byte("PING abc\r\n"))

	buf := make([]byte, 128)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := peer.Read(buf)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if got := string(buf[:n]); got != "PONG abc\r\n" {
		t.Fatalf("got %q, want PONG reply", got)
	}
}

func TestTransportSendEncodes(t *testing.T) {
	sock, peer := newPipe()
	defer peer.Close()

	tr, err := New(sock, "utf-8", 512, "irc.test", 2*time.Second, 16)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer tr.Close()

	var msg = testMessage()
	tr.Send(msg)

	buf := make([]byte, 128)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := peer.Read(buf)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if got := string(buf[:n]); got != ":irc.test 001 :Welcome to the Internet Relay Network alice\r\n" {
		t.Fatalf("got %q", got)
	}
}
