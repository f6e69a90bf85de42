// Copyright © 2018 The ELPS authors

// Package dapserver serves a debugger Session over the Debug Adapter
// Protocol so that editors can inspect a paused program and evaluate watch
// expressions in it.
//
// The server supports two transport modes:
//   - TCP: the server listens on a port and accepts a single client.
//   - Stdio: the server reads from stdin and writes to stdout, as editors
//     expect when they launch a debug adapter as a child process.
package dapserver

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/google/go-dap"
	"github.com/luthersystems/eescope/debugger"
	"github.com/sirupsen/logrus"
)

// Server is a DAP server for a single client.
type Server struct {
	session *debugger.Session
	log     *logrus.Entry

	mu     sync.Mutex
	seq    int
	writer io.Writer

	// done is closed when the server should stop processing messages.
	done chan struct{}
}

// New returns a server answering requests with session.  A nil log uses the
// standard logger.
func New(session *debugger.Session, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		session: session,
		log:     log.WithField("component", "dap"),
		done:    make(chan struct{}),
	}
}

// ServeConn serves DAP messages on a single connection. It blocks until
// the connection is closed or a disconnect request is received.
func (s *Server) ServeConn(conn io.ReadWriteCloser) error {
	defer conn.Close() //nolint:errcheck // best-effort cleanup
	return s.serve(conn, conn)
}

// ServeTCP listens on the given address and serves a single DAP client.
// It blocks until the client disconnects.
func (s *Server) ServeTCP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close() //nolint:errcheck // best-effort cleanup
	return s.ServeListener(ln)
}

// ServeListener accepts a single connection from the listener and serves
// DAP messages on it.
func (s *Server) ServeListener(ln net.Listener) error {
	s.log.Infof("Listening on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	s.log.Infof("Accepted connection from %s", conn.RemoteAddr())
	return s.ServeConn(conn)
}

// ServeStdio serves DAP messages on the given reader and writer,
// typically os.Stdin and os.Stdout.
func (s *Server) ServeStdio(r io.Reader, w io.Writer) error {
	return s.serve(r, w)
}

func (s *Server) serve(r io.Reader, w io.Writer) error {
	s.mu.Lock()
	s.writer = w
	s.mu.Unlock()
	reader := bufio.NewReader(r)
	h := newHandler(s, s.session)

	for {
		select {
		case <-s.done:
			return nil
		default:
		}

		msg, err := dap.ReadProtocolMessage(reader)
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				if err == io.EOF {
					return nil
				}
				return err
			}
		}

		h.handle(msg)
	}
}

// send writes a DAP protocol message to the client.
func (s *Server) send(msg dap.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dap.WriteProtocolMessage(s.writer, msg)
}

// nextSeq returns the next sequence number for outgoing messages.
func (s *Server) nextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// close signals the server to stop processing messages.
func (s *Server) close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
