// Command chatforged is the entry point: it loads configuration, builds
// the shared server state, and spawns one session per accepted
// connection on every configured listener.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"time"

	"chatforge.dev/chatforge/config"
	"chatforge.dev/chatforge/server"
	"chatforge.dev/chatforge/transport"
)

const (
	defaultMaxLine  = 512
	defaultIOWait   = 4 * time.Minute
	defaultOutbox   = 256
	defaultEncoding = "utf-8"
)

func main() {
	log.SetFlags(0)

	args, err := getArgs()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}

	maxLine := cfg.MaxLine
	if maxLine == 0 {
		maxLine = defaultMaxLine
	}
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = defaultEncoding
	}
	pingInterval := parseDurationOr(cfg.PingTime, transport.DefaultPingInterval)
	pingTimeout := parseDurationOr(cfg.DeadTime, transport.DefaultPingTimeout)

	srv := server.New(cfg.Hostname, cfg.Hostname, cfg.MOTDLines(), maxLine)
	resolver := server.NewResolver()

	errCh := make(chan error, len(cfg.Listeners))
	for name, l := range cfg.Listeners {
		ln, err := listen(l)
		if err != nil {
			log.Fatalf("listener %s: %s", name, err)
		}
		log.Printf("listening on %s (%s)", l.Address, name)

		go acceptLoop(ln, srv, resolver, encoding, maxLine, pingInterval, pingTimeout, errCh)
	}

	for err := range errCh {
		log.Printf("listener error: %s", err)
	}
}

// listen builds a net.Listener for l, TLS-wrapped if configured.
func listen(l config.Listener) (net.Listener, error) {
	if !l.TLS {
		return net.Listen("tcp", l.Address)
	}

	cert, err := tls.LoadX509KeyPair(l.TLSCert, l.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("load tls keypair: %w", err)
	}
	return transport.TLSListen("tcp", l.Address, &tls.Config{Certificates: []tls.Certificate{cert}})
}

// acceptLoop accepts connections off ln forever, spawning one session per
// connection. Any Accept error is sent to errCh and ends the loop
// for this listener; it does not bring down the others.
func acceptLoop(
	ln net.Listener,
	srv *server.Server,
	resolver server.Resolver,
	encoding string,
	maxLine int,
	pingInterval, pingTimeout time.Duration,
	errCh chan<- error,
) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}

		sock := transport.Plain(conn)
		tr, err := transport.NewWithKeepalive(sock, encoding, maxLine, srv.Name(), defaultIOWait, defaultOutbox, pingInterval, pingTimeout)
		if err != nil {
			log.Printf("client %s: build transport: %s", sock.PeerAddr(), err)
			_ = conn.Close()
			continue
		}

		sess := server.NewSession(srv, tr, sock.PeerAddr(), resolver)
		go sess.Run(context.Background())
	}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("invalid duration %q, using default %s", s, fallback)
		return fallback
	}
	return d
}
