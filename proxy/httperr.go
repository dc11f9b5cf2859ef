package proxy

import (
	"fmt"
	"io"
)

// clientError writes a minimal HTML error page to the client. The page
// format follows the CS:APP Tiny server family; real browsers only care
// about the status line.
func clientError(w io.Writer, cause, code, short, long string) {
	body := "<html><title>Proxy Error</title><body bgcolor=ffffff>\r\n" +
		code + ": " + short + "\r\n" +
		"<p>" + long + ": " + cause + "\r\n" +
		"<hr><em>The Tiny Web server</em>\r\n"

	fmt.Fprintf(w, "HTTP/1.0 %s %s\r\n", code, short)
	fmt.Fprintf(w, "Content-type: text/html\r\n")
	fmt.Fprintf(w, "Content-length: %d\r\n\r\n", len(body))
	io.WriteString(w, body)
}
