package usecase

import (
	"context"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

// PostRepository reads and authors app.bsky.feed.post records.
type PostRepository interface {
	GetPost(ctx context.Context, repo, collection, rkey string) (handles.Record[handles.PostRecord], error)
	CreatePost(ctx context.Context, post handles.PostRecord) (handles.StrongRef, error)
}

// RecordRepository stores the bot's own domain and page records.
type RecordRepository interface {
	GetDomain(ctx context.Context, owner string) (handles.DomainRecord, error)
	PutDomain(ctx context.Context, owner string, record handles.DomainRecord) error
	GetPage(ctx context.Context, rkey string) (handles.PageRecord, error)
	PutPage(ctx context.Context, rkey string, record handles.PageRecord) error
}

// HandleChanger talks to the handle registration side-channel.
type HandleChanger interface {
	Add(ctx context.Context, handle, did string) (domain.ChangeResult, error)
	Remove(ctx context.Context, handle, did string) (domain.ChangeResult, error)
}

// HandleListing reads the current handle snapshot.
type HandleListing interface {
	List(ctx context.Context) ([]domain.HandleEntry, error)
}

// SignalPublisher announces replies to other processes.
type SignalPublisher interface {
	PublishReply(ctx context.Context, event domain.ReplyEvent) error
}

// PageFetcher downloads hosted page content.
type PageFetcher interface {
	Fetch(ctx context.Context, href string) (string, error)
}

// Replier authors a threaded reply to the post that triggered a command.
type Replier interface {
	Reply(ctx context.Context, trigger Trigger, text string) error
}
