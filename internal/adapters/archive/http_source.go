package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// HTTPSource serves http:// and https:// URLs with plain GET requests.
// No timeout is set; cancellation comes from the context only.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource creates a source using client, or a default client when nil.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{client: client}
}

// Supports reports whether the URL uses http or https.
func (s *HTTPSource) Supports(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Open issues the GET request and returns the response body.
func (s *HTTPSource) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return resp.Body, nil
}

var _ ports.ArchiveSource = (*HTTPSource)(nil)
