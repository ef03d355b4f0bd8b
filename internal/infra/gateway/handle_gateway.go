package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/queerlil/handles/internal/domain"
	"github.com/queerlil/handles/internal/usecase"
)

// HandleGateway issues GET requests to the handle change endpoint. It
// reports status and body as-is; interpreting them is up to the caller.
// Requests have no client timeout and wait for the endpoint to answer.
type HandleGateway struct {
	client       *http.Client
	endpoint     string
	removeSecret string
}

func NewHandleGateway(endpoint, removeSecret string) *HandleGateway {
	return &HandleGateway{
		client:       &http.Client{},
		endpoint:     endpoint,
		removeSecret: removeSecret,
	}
}

func (g *HandleGateway) Add(ctx context.Context, handle, did string) (domain.ChangeResult, error) {
	return g.change(ctx, handle, did, false)
}

func (g *HandleGateway) Remove(ctx context.Context, handle, did string) (domain.ChangeResult, error) {
	return g.change(ctx, handle, did, true)
}

func (g *HandleGateway) change(ctx context.Context, handle, did string, remove bool) (domain.ChangeResult, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return domain.ChangeResult{}, errors.Wrap(err, "invalid change endpoint")
	}

	query := u.Query()
	query.Set("domain", handle)
	query.Set("did", did)
	if remove {
		query.Set("remove", g.removeSecret)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.ChangeResult{}, errors.Wrap(err, "failed to create request")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.ChangeResult{}, errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ChangeResult{}, errors.Wrap(err, "failed to read response body")
	}

	slog.InfoContext(
		ctx, "handle change response",
		slog.String("handle", handle),
		slog.Bool("remove", remove),
		slog.Int("status", resp.StatusCode),
		slog.String("module", "gateway"),
	)

	return domain.ChangeResult{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

var _ usecase.HandleChanger = (*HandleGateway)(nil)
