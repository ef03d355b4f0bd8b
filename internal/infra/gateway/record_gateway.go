package gateway

import (
	"context"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/client"
	"github.com/queerlil/handles/internal/usecase"
)

// RecordGateway maps the usecase ports onto XRPC record calls. Domain and
// page records live in the bot's own repository.
type RecordGateway struct {
	client *client.Client
	repo   string
}

func NewRecordGateway(cl *client.Client, repo string) *RecordGateway {
	return &RecordGateway{client: cl, repo: repo}
}

func (g *RecordGateway) GetPost(ctx context.Context, repo, collection, rkey string) (handles.Record[handles.PostRecord], error) {
	var record handles.Record[handles.PostRecord]
	err := g.client.GetRecord(ctx, repo, collection, rkey, &record)
	return record, err
}

func (g *RecordGateway) CreatePost(ctx context.Context, post handles.PostRecord) (handles.StrongRef, error) {
	return g.client.CreateRecord(ctx, g.repo, handles.PostCollection, post)
}

func (g *RecordGateway) GetDomain(ctx context.Context, owner string) (handles.DomainRecord, error) {
	var record handles.Record[handles.DomainRecord]
	err := g.client.GetRecord(ctx, g.repo, handles.DomainCollection, owner, &record)
	return record.Value, err
}

func (g *RecordGateway) PutDomain(ctx context.Context, owner string, record handles.DomainRecord) error {
	_, err := g.client.PutRecord(ctx, g.repo, handles.DomainCollection, owner, record)
	return err
}

func (g *RecordGateway) GetPage(ctx context.Context, rkey string) (handles.PageRecord, error) {
	var record handles.Record[handles.PageRecord]
	err := g.client.GetRecord(ctx, g.repo, handles.PageCollection, rkey, &record)
	return record.Value, err
}

func (g *RecordGateway) PutPage(ctx context.Context, rkey string, record handles.PageRecord) error {
	_, err := g.client.PutRecord(ctx, g.repo, handles.PageCollection, rkey, record)
	return err
}

var _ usecase.PostRepository = (*RecordGateway)(nil)
var _ usecase.RecordRepository = (*RecordGateway)(nil)
