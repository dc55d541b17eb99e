// Package fetch is the single HTTP session shared by a run. Requests are
// issued one at a time with a browser-like User-Agent and a bounded timeout;
// anything other than a 2xx response is an error.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultUserAgent is what the catalog site and image hosts see unless
// configured otherwise.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// Client wraps a connection-reusing resty client.
type Client struct {
	rc *resty.Client
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// NewClient builds a client. An empty userAgent or zero timeout selects the
// defaults.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &Client{rc: rc}
}

// Bytes fetches the raw response body of url.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	res, err := c.rc.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("unable to get %s: %w", url, err)
	}

	if !res.IsSuccess() {
		return nil, &StatusError{URL: url, Status: res.StatusCode()}
	}

	return res.Body(), nil
}

// Page fetches url as text. The character set is detected from the body
// itself because the encoding declared by the server is not trustworthy.
func (c *Client) Page(ctx context.Context, url string) (string, error) {
	body, err := c.Bytes(ctx, url)
	if err != nil {
		return "", err
	}

	return Decode(body), nil
}

// Decode converts body to UTF-8 using the most likely character set. When
// detection or conversion fails the body is returned as-is.
func Decode(body []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || result == nil {
		return string(body)
	}

	name := strings.ToLower(result.Charset)
	if name == "utf-8" || name == "ascii" || name == "us-ascii" {
		return string(body)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(body)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}

	return string(decoded)
}
