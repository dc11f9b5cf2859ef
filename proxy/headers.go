package proxy

import (
	"bufio"
	"io"
	"strings"
)

// Fixed header values presented to every origin. The proxy speaks for a
// single pinned browser identity regardless of what the client sent.
const (
	userAgentHdr      = "User-Agent: Mozilla/5.0 (X11; Linux x86_64; rv:10.0.3) Gecko/20120305 Firefox/10.0.3\r\n"
	acceptHdr         = "Accept: text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8\r\n"
	acceptEncodingHdr = "Accept-Encoding: gzip, deflate\r\n"
	connectionHdr     = "Connection: close\r\n"
	proxyConnHdr      = "Proxy-Connection: close\r\n"
)

// suppressedHeaders are client headers replaced by the fixed values
// above. Matching is case-insensitive on the exact header name, so
// Accept-Language still passes through.
var suppressedHeaders = []string{
	"User-Agent", "Accept", "Accept-Encoding", "Connection", "Proxy-Connection",
}

func isSuppressed(name string) bool {
	for _, s := range suppressedHeaders {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// readLine returns one line including its terminator. A final unterminated
// line before EOF is returned with a nil error; the empty read reports EOF.
func readLine(rd *bufio.Reader) (string, error) {
	line, err := rd.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

// forwardClientHeaders streams the client's remaining headers to the
// origin, skipping the suppressed set. It stops at the blank line, which
// is consumed but not forwarded. Reports whether a Host header was seen.
func forwardClientHeaders(rd *bufio.Reader, origin io.Writer) (hostSeen bool, err error) {
	for {
		line, err := readLine(rd)
		if err != nil {
			return hostSeen, err
		}
		if len(line) < 2 {
			return hostSeen, io.ErrUnexpectedEOF
		}
		if len(line) == 2 {
			return hostSeen, nil
		}

		if colon := strings.IndexByte(line, ':'); colon >= 0 {
			name := strings.TrimRight(line[:colon], " ")
			if strings.EqualFold(name, "Host") {
				hostSeen = true
			}
			if isSuppressed(name) {
				continue
			}
		}

		if DBGon() {
			DBG("client header: %s\n", strings.TrimRight(line, "\r\n"))
		}
		if _, err := io.WriteString(origin, line); err != nil {
			return hostSeen, err
		}
	}
}

// writeProxyHeaders emits the fixed origin-side headers, adding a Host
// header only when the client supplied none. The caller terminates the
// header block.
func writeProxyHeaders(origin io.Writer, hostSeen bool, host string) error {
	var b strings.Builder
	if !hostSeen {
		b.WriteString("Host: " + host + "\r\n")
	}
	b.WriteString(userAgentHdr)
	b.WriteString(acceptHdr)
	b.WriteString(acceptEncodingHdr)
	b.WriteString(connectionHdr)
	b.WriteString(proxyConnHdr)

	_, err := io.WriteString(origin, b.String())
	return err
}

// drainClientHeaders discards the rest of the client's request on the
// cache-hit path.
func drainClientHeaders(rd *bufio.Reader) {
	for {
		line, err := readLine(rd)
		if err != nil || len(line) <= 2 {
			return
		}
	}
}
