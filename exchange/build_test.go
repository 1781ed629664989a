package exchange

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"reflect"
	"testing"

	"github.com/nojima/httpform-go/version"
)

func parseURL(t *testing.T, rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		t.Fatalf("failed to parse URL: %s", err)
	}
	return u
}

func readAll(t *testing.T, reader io.Reader) string {
	b, err := ioutil.ReadAll(reader)
	if err != nil {
		t.Errorf("failed to read all: %s", err)
	}
	return string(b)
}

func stringPtr(s string) *string {
	return &s
}

func TestEncodeURIComponent(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "notes.txt", expected: "notes.txt"},
		{input: "a b.txt", expected: "a%20b.txt"},
		{input: "x/y", expected: "x%2Fy"},
		{input: "100%.txt", expected: "100%25.txt"},
		{input: "q?a=1&b#c", expected: "q%3Fa%3D1%26b%23c"},
		{input: "-_.!~*'()", expected: "-_.!~*'()"},
		{input: "über", expected: "%C3%BCber"},
		{input: "", expected: ""},
	}
	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			actual := EncodeURIComponent(tt.input)
			if actual != tt.expected {
				t.Errorf("unexpected encoding: expected=%s, actual=%s", tt.expected, actual)
			}
			decoded, err := url.PathUnescape(actual)
			if err != nil {
				t.Fatalf("unexpected error: err=%v", err)
			}
			if decoded != tt.input {
				t.Errorf("round trip failed: expected=%s, actual=%s", tt.input, decoded)
			}
		})
	}
}

func TestResourceURL(t *testing.T) {
	origin := parseURL(t, "http://localhost:8081/")

	testCases := []struct {
		filename    string
		expectedURI string
	}{
		{filename: "notes.txt", expectedURI: "/notes.txt"},
		{filename: "a b.txt", expectedURI: "/a%20b.txt"},
		{filename: "x/y", expectedURI: "/x%2Fy"},
		{filename: "", expectedURI: "/"},
	}
	for _, tt := range testCases {
		t.Run(tt.filename, func(t *testing.T) {
			u := ResourceURL(origin, tt.filename)
			if u.RequestURI() != tt.expectedURI {
				t.Errorf("unexpected request URI: expected=%s, actual=%s", tt.expectedURI, u.RequestURI())
			}
			if u.Host != "localhost:8081" {
				t.Errorf("unexpected host: %s", u.Host)
			}
		})
	}
}

func TestPageURL(t *testing.T) {
	origin := parseURL(t, "http://localhost:8081/")

	u, err := PageURL(origin, "/anacondazz2")
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}
	if u.String() != "http://localhost:8081/anacondazz2" {
		t.Errorf("unexpected URL: %s", u)
	}

	if _, err := PageURL(origin, "http://elsewhere.example/"); err == nil {
		t.Errorf("absolute URL should be rejected")
	}
}

func TestBuildHTTPRequest_Post(t *testing.T) {
	// Setup
	origin := parseURL(t, "http://localhost:8081/")
	req := &Request{
		Method:      "POST",
		Filename:    "notes.txt",
		Body:        stringPtr("hello"),
		ContentType: "text/plain",
	}

	// Exercise
	actual, err := BuildHTTPRequest(context.Background(), origin, req)
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}

	// Verify
	if actual.Method != "POST" {
		t.Errorf("unexpected method: expected=%v, actual=%v", "POST", actual.Method)
	}
	if actual.URL.String() != "http://localhost:8081/notes.txt" {
		t.Errorf("unexpected URL: %v", actual.URL)
	}
	expectedHeader := http.Header{
		"Content-Type": []string{"text/plain"},
		"User-Agent":   []string{fmt.Sprintf("httpform-go/%s", version.Current())},
	}
	if !reflect.DeepEqual(expectedHeader, actual.Header) {
		t.Errorf("unexpected header: expected=%v, actual=%v", expectedHeader, actual.Header)
	}
	if actual.ContentLength != 5 {
		t.Errorf("unexpected content length: %d", actual.ContentLength)
	}
	if body := readAll(t, actual.Body); body != "hello" {
		t.Errorf("unexpected body: expected=%s, actual=%s", "hello", body)
	}
	replay, err := actual.GetBody()
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}
	if body := readAll(t, replay); body != "hello" {
		t.Errorf("unexpected replayed body: %s", body)
	}
}

func TestBuildHTTPRequest_Delete(t *testing.T) {
	origin := parseURL(t, "http://localhost:8081/")
	req := &Request{
		Method:   "DELETE",
		Filename: "a b.txt",
	}

	actual, err := BuildHTTPRequest(context.Background(), origin, req)
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}

	if actual.Body != nil {
		t.Errorf("DELETE must not carry a body")
	}
	if actual.Header.Get("Content-Type") != "" {
		t.Errorf("DELETE must not carry Content-Type: %s", actual.Header.Get("Content-Type"))
	}
	if actual.URL.RequestURI() != "/a%20b.txt" {
		t.Errorf("unexpected request URI: %s", actual.URL.RequestURI())
	}
}

func TestBuildHTTPRequest_EmptyBody(t *testing.T) {
	origin := parseURL(t, "http://localhost:8081/")
	req := &Request{
		Method:      "POST",
		Filename:    "",
		Body:        stringPtr(""),
		ContentType: "text/plain",
	}

	actual, err := BuildHTTPRequest(context.Background(), origin, req)
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}

	if actual.Body != http.NoBody {
		t.Errorf("empty payload should be sent as NoBody")
	}
	if actual.ContentLength != 0 {
		t.Errorf("unexpected content length: %d", actual.ContentLength)
	}
	if actual.URL.RequestURI() != "/" {
		t.Errorf("unexpected request URI: %s", actual.URL.RequestURI())
	}
	if actual.Header.Get("Content-Type") != "text/plain" {
		t.Errorf("unexpected content type: %s", actual.Header.Get("Content-Type"))
	}
}

func TestBuildHTTPRequest_NoMethod(t *testing.T) {
	origin := parseURL(t, "http://localhost:8081/")
	if _, err := BuildHTTPRequest(context.Background(), origin, &Request{}); err == nil {
		t.Errorf("expected an error for an empty method")
	}
}
