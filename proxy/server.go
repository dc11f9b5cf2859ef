// Package proxy implements a concurrent HTTP/1.0 caching forward proxy
// for GET requests. Each accepted connection is served by its own
// goroutine; responses small enough to cache are stored under a
// readers/writers gate and replayed on the next request for the same
// object. Only the connection that hit an error is torn down; the accept
// loop runs until Shutdown.
package proxy

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/intuitivelabs/slog"

	"github.com/arlabs/memnet/proxy/cache"
)

const (
	// chunkSize is the unit of body streaming to the client, both for the
	// origin relay and for cache replay.
	chunkSize = 8192

	// resolvedEntries bounds the host:port resolution memo.
	resolvedEntries = 256
)

// Server is the proxy. Create one with New, run it with ListenAndServe,
// stop it with Shutdown.
type Server struct {
	addr  string
	store *cache.Cache

	// resolved memoizes host:port -> dialed address so repeat requests
	// skip the resolver. Entries are dropped on dial failure.
	resolved *lru.Cache[string, string]

	ln       net.Listener
	started  chan struct{}
	draining atomic.Bool
}

// Option adjusts a Server at construction.
type Option func(*Server)

// WithCache substitutes a preconfigured object cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) { s.store = c }
}

// WithVerbose raises the package log level so request traffic is traced.
func WithVerbose() Option {
	return func(s *Server) {
		Log = slog.New(slog.LDBG, slog.LlocInfoS, slog.LStdErr)
	}
}

// New builds a proxy listening on the given TCP port.
func New(port int, opts ...Option) (*Server, error) {
	// Port 0 asks the kernel for an ephemeral port.
	if port < 0 || port > 65535 {
		return nil, ErrBadPort
	}

	s := &Server{
		addr:    ":" + strconv.Itoa(port),
		started: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = cache.New(nil)
	}

	resolved, err := lru.New[string, string](resolvedEntries)
	if err != nil {
		return nil, err
	}
	s.resolved = resolved
	return s, nil
}

// Cache exposes the object cache, mainly for shutdown reporting.
func (s *Server) Cache() *cache.Cache { return s.store }

// Addr returns the bound listen address once ListenAndServe is up.
func (s *Server) Addr() net.Addr {
	<-s.started
	return s.ln.Addr()
}

// ListenAndServe accepts connections until Shutdown, serving each in its
// own goroutine. Per-connection failures are logged and never stop the
// loop. After Shutdown the cache is flushed and nil is returned.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	close(s.started)
	INFO("listening on %s\n", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.draining.Load() || errors.Is(err, net.ErrClosed) {
				break
			}
			ERR("accept: %v\n", err)
			continue
		}
		go func() {
			defer conn.Close()
			s.process(conn)
		}()
	}

	INFO("draining: dropping %d cached objects (%d bytes)\n",
		s.store.Len(), s.store.Size())
	s.store.Flush()
	return nil
}

// Shutdown flips the drain flag and unblocks the accept loop. Safe to
// call from a signal watcher; connections already in flight finish on
// their own.
func (s *Server) Shutdown() {
	if s.draining.CompareAndSwap(false, true) {
		if s.ln != nil {
			s.ln.Close()
		}
	}
}

// process serves one client connection: parse, consult the cache, and
// either replay the stored object or forward to the origin.
func (s *Server) process(conn net.Conn) {
	rd := bufio.NewReader(conn)

	line, err := readLine(rd)
	if err != nil || len(line) <= 2 {
		clientError(conn, "GET", "400", "Bad Request",
			"Invalid syntax: every line must end with \\r\\n")
		ERR("could not read client request line\n")
		return
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		clientError(conn, "", "400", "Bad Request",
			"Invalid syntax for GET request")
		ERR("invalid request line %q\n", strings.TrimRight(line, "\r\n"))
		return
	}
	method, uri := fields[0], fields[1]

	if !strings.EqualFold(method, "GET") {
		clientError(conn, method, "501", "Not Implemented",
			"Proxy only supports the GET method")
		ERR("unsupported method %q\n", method)
		return
	}

	tgt := parseTarget(uri)
	if DBGon() {
		DBG("request: %s %s %d\n", tgt.Host, tgt.Path, tgt.Port)
	}

	fp := cache.NewFingerprint(tgt.Host, tgt.Path, tgt.Port)
	if data, ok := s.store.Lookup(fp); ok {
		drainClientHeaders(rd)
		if err := writeChunks(conn, data); err != nil {
			ERR("replaying cached object: %v\n", err)
		}
		return
	}

	origin, err := s.dialOrigin(tgt)
	if err != nil {
		clientError(conn, method, "502", "Bad Gateway",
			"Proxy could not connect to web server")
		ERR("connecting to %s: %v\n", tgt.hostPort(), err)
		return
	}
	defer origin.Close()

	if _, err := origin.Write([]byte(tgt.requestLine())); err != nil {
		clientError(conn, method, "502", "Bad Gateway",
			"Proxy could not send HTTP request to web server.")
		ERR("writing request line: %v\n", err)
		return
	}

	hostSeen, err := forwardClientHeaders(rd, origin)
	if err != nil {
		clientError(conn, method, "502", "Bad Gateway",
			"Proxy could not write data to web server")
		ERR("forwarding client headers: %v\n", err)
		return
	}

	if err := writeProxyHeaders(origin, hostSeen, tgt.Host); err != nil {
		clientError(conn, method, "502", "Bad Gateway",
			"Proxy could not write header data to web server")
		ERR("writing proxy headers: %v\n", err)
		return
	}

	if _, err := origin.Write([]byte("\r\n")); err != nil {
		ERR("terminating header block: %v\n", err)
		return
	}

	if err := s.relay(origin, conn, fp); err != nil {
		clientError(conn, method, "502", "Bad Gateway",
			"Proxy could not read web data from web server")
		ERR("relaying origin response: %v\n", err)
		return
	}

	if DBGon() {
		DBG("served %s\n", tgt.hostPort())
	}
}

// dialOrigin connects to the target, going through the resolved-address
// memo. A stale memo entry is dropped and the dial retried by name.
func (s *Server) dialOrigin(tgt target) (net.Conn, error) {
	hp := tgt.hostPort()

	if addr, ok := s.resolved.Get(hp); ok {
		if conn, err := net.Dial("tcp", addr); err == nil {
			return conn, nil
		}
		s.resolved.Remove(hp)
	}

	conn, err := net.Dial("tcp", hp)
	if err != nil {
		return nil, err
	}
	s.resolved.Add(hp, conn.RemoteAddr().String())
	return conn, nil
}

// relay streams the origin body to the client in chunks, teeing a copy
// into a side buffer for the cache. The copy is abandoned once it would
// exceed the cacheable object size; a poisoned buffer is never inserted.
func (s *Server) relay(origin net.Conn, client net.Conn, fp cache.Fingerprint) error {
	var (
		side     []byte
		poisoned bool
		buf      = make([]byte, chunkSize)
	)

	for {
		n, err := origin.Read(buf)
		if n > 0 {
			if _, werr := client.Write(buf[:n]); werr != nil {
				return werr
			}
			if !poisoned {
				if len(side)+n <= s.store.MaxObjectSize() {
					side = append(side, buf[:n]...)
				} else {
					poisoned = true
					side = nil
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
	}

	if !poisoned {
		s.store.Insert(fp, side)
	}
	return nil
}

// writeChunks sends data to the client in chunk-sized slices.
func writeChunks(w net.Conn, data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > chunkSize {
			n = chunkSize
		}
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
