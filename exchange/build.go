package exchange

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/nojima/httpform-go/version"
	"github.com/pkg/errors"
)

const upperhex = "0123456789ABCDEF"

// Request is a single form request against a file on the origin.
// A nil Body means the request carries no payload.
type Request struct {
	Method      string
	Filename    string
	Body        *string
	ContentType string
}

// EncodeURIComponent percent-encodes every byte of s except the
// unreserved marks A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// ResourceURL returns origin + "/" + the encoded filename. The filename is
// a single path segment, so a "/" inside it is sent as %2F.
func ResourceURL(origin *url.URL, filename string) *url.URL {
	return &url.URL{
		Scheme:  origin.Scheme,
		User:    origin.User,
		Host:    origin.Host,
		Path:    "/" + filename,
		RawPath: "/" + EncodeURIComponent(filename),
	}
}

// PageURL returns origin + path for a navigation target.
func PageURL(origin *url.URL, path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing page path %s", path)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, errors.Errorf("page path must be origin-relative: %s", path)
	}
	base := url.URL{Scheme: origin.Scheme, User: origin.User, Host: origin.Host, Path: "/"}
	return base.ResolveReference(ref), nil
}

func BuildHTTPRequest(ctx context.Context, origin *url.URL, req *Request) (*http.Request, error) {
	if req.Method == "" {
		return nil, errors.New("request method is empty")
	}

	header := make(http.Header)
	bodyTuple := buildHTTPBody(req)
	if bodyTuple.contentType != "" {
		header.Set("Content-Type", bodyTuple.contentType)
	}
	header.Set("User-Agent", userAgent())

	r := &http.Request{
		Method:        req.Method,
		URL:           ResourceURL(origin, req.Filename),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Host:          origin.Host,
		Body:          bodyTuple.body,
		ContentLength: bodyTuple.contentLength,
	}
	if bodyTuple.body != nil {
		payload := *req.Body
		r.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(strings.NewReader(payload)), nil
		}
	}
	return r.WithContext(ctx), nil
}

func buildNavigationRequest(ctx context.Context, target *url.URL) *http.Request {
	header := make(http.Header)
	header.Set("User-Agent", userAgent())
	header.Set("Accept", "text/html,*/*")

	r := &http.Request{
		Method:     http.MethodGet,
		URL:        target,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Host:       target.Host,
	}
	return r.WithContext(ctx)
}

type bodyTuple struct {
	body          io.ReadCloser
	contentLength int64
	contentType   string
}

func buildHTTPBody(req *Request) bodyTuple {
	if req.Body == nil {
		return bodyTuple{}
	}
	if len(*req.Body) == 0 {
		// A non-nil body with zero length would be sent chunked.
		return bodyTuple{body: http.NoBody, contentType: req.ContentType}
	}
	return bodyTuple{
		body:          ioutil.NopCloser(strings.NewReader(*req.Body)),
		contentLength: int64(len(*req.Body)),
		contentType:   req.ContentType,
	}
}

func userAgent() string {
	return fmt.Sprintf("httpform-go/%s", version.Current())
}
