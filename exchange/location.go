package exchange

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/pkg/errors"
)

// PageHandler consumes the page a navigation lands on. The body is
// closed after it returns.
type PageHandler func(resp *http.Response) error

// Location navigates by loading whole pages from the client's origin.
// Navigation does not go through Fetch and is not observed as a form
// request.
type Location struct {
	client *Client
	handle PageHandler

	mu   sync.Mutex
	href string
	err  error
}

func NewLocation(client *Client, handle PageHandler) *Location {
	return &Location{
		client: client,
		handle: handle,
		href:   client.origin.String(),
	}
}

// Replace loads path and hands the response to the page handler. The
// outcome is also kept for Err.
func (l *Location) Replace(ctx context.Context, path string) error {
	err := l.replace(ctx, path)
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
	return err
}

func (l *Location) replace(ctx context.Context, path string) error {
	target, err := PageURL(l.client.origin, path)
	if err != nil {
		return err
	}

	resp, err := l.client.do(buildNavigationRequest(ctx, target))
	if err != nil {
		return errors.Wrapf(err, "navigating to %s", path)
	}
	defer resp.Body.Close()

	l.mu.Lock()
	if resp.Request != nil && resp.Request.URL != nil {
		l.href = resp.Request.URL.String()
	} else {
		l.href = target.String()
	}
	l.mu.Unlock()

	if l.handle == nil {
		_, err = io.Copy(ioutil.Discard, resp.Body)
		return errors.Wrap(err, "reading page")
	}
	return l.handle(resp)
}

// Href is the address of the current page.
func (l *Location) Href() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.href
}

// Err returns the outcome of the last navigation.
func (l *Location) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
