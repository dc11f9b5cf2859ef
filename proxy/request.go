package proxy

import (
	"strconv"
	"strings"
)

// target is the parsed destination of one proxied request.
type target struct {
	Host string
	Path string // origin path with the leading slash stripped
	Port int
}

// defaultPort is assumed when the URI names none.
const defaultPort = 80

// stripScheme drops everything up to and including "://". A URI with no
// scheme marker is returned as-is.
func stripScheme(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[i+3:]
	}
	return uri
}

// parseTarget splits a request URI into host, path and port. The port is
// honored only when the colon appears before the first slash, so paths
// containing colons do not confuse it. A missing path becomes the empty
// string; the forwarded request line restores the slash. A malformed
// port number parses to zero and fails later at dial time.
func parseTarget(uri string) target {
	site := stripScheme(uri)

	slash := strings.IndexByte(site, '/')
	if slash < 0 {
		slash = len(site)
		site += "/"
	}
	colon := strings.IndexByte(site, ':')

	t := target{Port: defaultPort, Path: site[slash+1:]}
	if colon >= 0 && colon < slash {
		t.Host = site[:colon]
		t.Port, _ = strconv.Atoi(site[colon+1 : slash])
	} else {
		t.Host = site[:slash]
	}
	return t
}

// requestLine is the origin-side request line for a target, always
// HTTP/1.0 with an explicit leading slash.
func (t target) requestLine() string {
	return "GET /" + t.Path + " HTTP/1.0\r\n"
}

// hostPort joins host and port for dialing.
func (t target) hostPort() string {
	return t.Host + ":" + strconv.Itoa(t.Port)
}
