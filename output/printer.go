package output

import (
	"io"
	"net/http"
)

// Printer renders one run: the observed exchange headers, then the text
// the page ended up showing.
type Printer interface {
	PrintRequestLine(req *http.Request) error
	PrintStatusLine(proto string, status string, statusCode int) error
	PrintHeader(header http.Header) error
	// PrintText prints the content of an output element. failed marks
	// the fixed message written when the request did not complete.
	PrintText(text string, failed bool) error
	PrintBody(body io.Reader, contentType string) error
}
