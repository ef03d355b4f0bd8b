package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/queerlil/handles/internal/usecase"
)

type PageFetcher struct {
	client *http.Client
}

func NewPageFetcher(cl *http.Client) *PageFetcher {
	return &PageFetcher{client: cl}
}

func (f *PageFetcher) Fetch(ctx context.Context, href string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}
	return string(body), nil
}

var _ usecase.PageFetcher = (*PageFetcher)(nil)
