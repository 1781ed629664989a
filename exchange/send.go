package exchange

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Response is a completed exchange. Text is the whole response body;
// the status code is informational only.
type Response struct {
	Proto      string
	Status     string
	StatusCode int
	Header     http.Header
	Text       string
}

// Client sends form requests to a single origin. The hooks, when set,
// observe each request before it is sent and each response before its
// body is read.
type Client struct {
	http   *http.Client
	origin *url.URL

	OnRequest  func(*http.Request)
	OnResponse func(*http.Response)
}

func NewClient(origin *url.URL, options *Options) (*Client, error) {
	if origin == nil || origin.Host == "" {
		return nil, errors.New("origin must have a host")
	}
	httpClient, err := BuildHTTPClient(options)
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient, origin: origin}, nil
}

func (c *Client) Origin() *url.URL {
	return c.origin
}

// Fetch performs exactly one attempt. Any HTTP status is a successful
// exchange; only transport failures and body read failures are errors.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	r, err := BuildHTTPRequest(ctx, c.origin, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(r)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s request", req.Method)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &Response{
		Proto:      resp.Proto,
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Text:       string(body),
	}, nil
}

func (c *Client) do(r *http.Request) (*http.Response, error) {
	if c.OnRequest != nil {
		c.OnRequest(r)
	}
	resp, err := c.http.Do(r)
	if err != nil {
		return nil, err
	}
	if c.OnResponse != nil {
		c.OnResponse(resp)
	}
	return resp, nil
}
