package submit

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/nojima/httpform-go/exchange"
	"github.com/nojima/httpform-go/page"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type capturedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

type fakeOrigin struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
}

func newFakeOrigin(t *testing.T, status int, text string) *fakeOrigin {
	o := &fakeOrigin{}
	o.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		o.mu.Lock()
		o.requests = append(o.requests, capturedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
		o.mu.Unlock()
		w.WriteHeader(status)
		w.Write([]byte(text))
	}))
	t.Cleanup(o.server.Close)
	return o
}

func (o *fakeOrigin) client(t *testing.T) *exchange.Client {
	u, err := url.Parse(o.server.URL)
	require.NoError(t, err)
	client, err := exchange.NewClient(u, &exchange.Options{Timeout: 5 * time.Second, FollowRedirects: true})
	require.NoError(t, err)
	return client
}

func (o *fakeOrigin) captured() []capturedRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]capturedRequest(nil), o.requests...)
}

type failingFetcher struct {
	calls int
}

func (f *failingFetcher) Fetch(context.Context, *exchange.Request) (*exchange.Response, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

type nopLocation struct{}

func (nopLocation) Replace(context.Context, string) error { return nil }

func formData(pairs ...string) *page.FormData {
	data := page.NewFormData()
	for i := 0; i+1 < len(pairs); i += 2 {
		data.Append(pairs[i], pairs[i+1])
	}
	return data
}

func newDocument() *page.Document {
	return page.New(page.DefaultLayout(), nopLocation{})
}

func TestPostSubmitter(t *testing.T) {
	origin := newFakeOrigin(t, http.StatusOK, "OK")
	doc := newDocument()
	handler, err := NewPostSubmitter(doc, "response", origin.client(t), zap.NewNop())
	require.NoError(t, err)

	handler.Submit(context.Background(), formData("filename", "notes.txt", "body", "hello"))

	assert.Equal(t, []capturedRequest{{
		Method:      "POST",
		Path:        "/notes.txt",
		ContentType: "text/plain",
		Body:        "hello",
	}}, origin.captured())
	text, failed := doc.GetElementByID("response").Snapshot()
	assert.Equal(t, "OK", text)
	assert.False(t, failed)
	assert.False(t, doc.GetElementByID("deleteResponse").Written())
}

func TestDeleteSubmitter(t *testing.T) {
	origin := newFakeOrigin(t, http.StatusOK, "Deleted")
	doc := newDocument()
	handler, err := NewDeleteSubmitter(doc, "deleteResponse", origin.client(t), zap.NewNop())
	require.NoError(t, err)

	handler.Submit(context.Background(), formData("filename", "notes.txt", "body", "ignored"))

	assert.Equal(t, []capturedRequest{{
		Method: "DELETE",
		Path:   "/notes.txt",
	}}, origin.captured())
	assert.Equal(t, "Deleted", doc.GetElementByID("deleteResponse").Text())
	assert.False(t, doc.GetElementByID("response").Written())
}

func TestSubmitter_ReservedCharacters(t *testing.T) {
	origin := newFakeOrigin(t, http.StatusOK, "OK")
	doc := newDocument()
	handler, err := NewPostSubmitter(doc, "response", origin.client(t), nil)
	require.NoError(t, err)

	filenames := []string{"a b.txt", "x/y", "#hash?.txt", ""}
	for _, filename := range filenames {
		handler.Submit(context.Background(), formData("filename", filename))
	}

	requests := origin.captured()
	require.Len(t, requests, len(filenames))
	for i, filename := range filenames {
		assert.Equal(t, "/"+filename, requests[i].Path)
		assert.Equal(t, "", requests[i].Body)
	}
}

func TestSubmitter_ErrorStatusIsDisplayed(t *testing.T) {
	origin := newFakeOrigin(t, http.StatusNotFound, "404 Not Found")
	doc := newDocument()
	handler, err := NewDeleteSubmitter(doc, "deleteResponse", origin.client(t), nil)
	require.NoError(t, err)

	handler.Submit(context.Background(), formData("filename", "missing.txt"))

	text, failed := doc.GetElementByID("deleteResponse").Snapshot()
	assert.Equal(t, "404 Not Found", text)
	assert.False(t, failed)
}

func TestSubmitter_Failure(t *testing.T) {
	testCases := []struct {
		title    string
		config   Config
		expected string
	}{
		{title: "POST", config: PostConfig("response"), expected: "Error sending POST"},
		{title: "DELETE", config: DeleteConfig("deleteResponse"), expected: "Error sending DELETE"},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			doc := newDocument()
			fetcher := &failingFetcher{}
			handler, err := NewHandler(tt.config, doc, fetcher, zap.New(core))
			require.NoError(t, err)

			handler.Submit(context.Background(), formData("filename", "notes.txt", "body", "hello"))

			assert.Equal(t, 1, fetcher.calls)
			text, failed := doc.GetElementByID(tt.config.OutputID).Snapshot()
			assert.Equal(t, tt.expected, text)
			assert.True(t, failed)

			errorLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
			require.Len(t, errorLogs, 1)
			assert.Equal(t, "connection refused", errorLogs[0].ContextMap()["error"])
		})
	}
}

func TestSubmitter_UnreachableOrigin(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	server.Close()
	client, err := exchange.NewClient(u, &exchange.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)

	doc := newDocument()
	handler, err := NewPostSubmitter(doc, "response", client, nil)
	require.NoError(t, err)

	handler.Submit(context.Background(), formData("filename", "notes.txt", "body", "hello"))

	assert.Equal(t, "Error sending POST", doc.GetElementByID("response").Text())
}

func TestNewHandler_Invalid(t *testing.T) {
	doc := newDocument()

	_, err := NewHandler(PostConfig("nowhere"), doc, &failingFetcher{}, nil)
	assert.Error(t, err)

	_, err = NewHandler(Config{OutputID: "response"}, doc, &failingFetcher{}, nil)
	assert.Error(t, err)
}

func TestConfigFromForm(t *testing.T) {
	layout := page.DefaultLayout()

	assert.Equal(t, PostConfig("response"), ConfigFromForm(layout.Forms[0]))
	assert.Equal(t, DeleteConfig("deleteResponse"), ConfigFromForm(layout.Forms[1]))
}
