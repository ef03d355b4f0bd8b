package gateway

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/queerlil/handles/internal/domain"
	"github.com/queerlil/handles/internal/usecase"
)

// ListingGateway reads the handle snapshot file: a JSON array of
// single-key objects mapping handle to owner DID. The file is re-read on
// every call.
type ListingGateway struct {
	path string
}

func NewListingGateway(path string) *ListingGateway {
	return &ListingGateway{path: path}
}

func (g *ListingGateway) List(ctx context.Context) ([]domain.HandleEntry, error) {
	raw, err := os.ReadFile(g.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read handle listing %s", g.path)
	}

	var items []map[string]string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "failed to decode handle listing")
	}

	entries := make([]domain.HandleEntry, 0, len(items))
	for _, item := range items {
		for handle, owner := range item {
			entries = append(entries, domain.HandleEntry{Handle: handle, Owner: owner})
			break
		}
	}
	return entries, nil
}

var _ usecase.HandleListing = (*ListingGateway)(nil)
