package feed

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const sheetsExportURL = "https://docs.google.com/spreadsheets/d/%s/gviz/tq"

const userAgent = "pumplog/1.0"

// StatusError is returned when the feed answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed returned status %d: %s", e.StatusCode, e.Body)
}

// SheetURL builds the CSV export URL of one sheet of a Google spreadsheet
func SheetURL(sheetID, sheetName string) string {
	params := url.Values{}
	params.Set("tqx", "out:csv")
	if sheetName != "" {
		params.Set("sheet", sheetName)
	}
	return fmt.Sprintf(sheetsExportURL, url.PathEscape(sheetID)) + "?" + params.Encode()
}

// Client retrieves the raw feed text
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a feed client. A zero timeout means no client-side limit.
func NewClient(feedURL string, timeout time.Duration) *Client {
	return &Client{
		url:  feedURL,
		http: newHTTPClient(timeout),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// URL returns the address the client fetches from
func (c *Client) URL() string {
	return c.url
}

// Fetch performs one GET of the feed and returns the body as text
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	return string(body), nil
}
