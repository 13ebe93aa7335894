/* external.go
 * Contains the logic used to fetch workbooks from remote URLs (published spreadsheets, federation download links)
 * and return the raw bytes to the higher level functions
 * Authors: Zachary Bower
 */

package external

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// MaxWorkbookSize caps the size of a downloaded workbook
	MaxWorkbookSize = 20 << 20
	userAgent       = "TournamentImporter/1.0"
)

var (
	ErrInvalidURL = errors.New("invalid workbook url")
	ErrTooLarge   = errors.New("workbook exceeds size limit")
)

// StatusError is returned when the remote server answers with a non 200 status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: status code %d", e.URL, e.StatusCode)
}

// Client fetches remote workbooks
type Client struct {
	HTTP    *http.Client
	MaxSize int64
}

// NewClient returns a client with a request timeout and the default size limit
func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}, MaxSize: MaxWorkbookSize}
}

// FetchWorkbook downloads a workbook with a default client
func FetchWorkbook(ctx context.Context, rawURL string) ([]byte, error) {
	return NewClient(30 * time.Second).FetchWorkbook(ctx, rawURL)
}

// FetchWorkbook downloads the workbook at rawURL. This function does not decode the workbook
// Preconditions: Receives an http or https URL
// Postconditions: Returns the (gzip decoded) body, ErrInvalidURL for other URLs, a *StatusError for non 200 answers,
// or ErrTooLarge when the body exceeds the size limit
func (c *Client) FetchWorkbook(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept-Encoding", "gzip")

	response, err := c.HTTP.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, StatusCode: response.StatusCode}
	}

	var body io.Reader = response.Body
	if response.Header.Get("Content-Encoding") == "gzip" {
		reader, err := gzip.NewReader(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer reader.Close()
		body = reader
	}

	limit := c.MaxSize
	if limit <= 0 {
		limit = MaxWorkbookSize
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
