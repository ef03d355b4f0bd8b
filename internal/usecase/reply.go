package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

var tracer = otel.Tracer("usecase")

// Trigger identifies the post a command arrived in.
type Trigger struct {
	Author  string
	RKey    string
	Command string
	Embed   *handles.Embed
}

func (t Trigger) URI() string {
	return handles.ComposeATURI(t.Author, handles.PostCollection, t.RKey)
}

type ReplyUsecase struct {
	posts  PostRepository
	signal SignalPublisher
	now    func() time.Time
}

// NewReplyUsecase builds the reply publisher. signal may be nil.
func NewReplyUsecase(posts PostRepository, signal SignalPublisher) *ReplyUsecase {
	return &ReplyUsecase{
		posts:  posts,
		signal: signal,
		now:    time.Now,
	}
}

// ResolveRefs returns the root and parent references for a reply to author/rkey.
func (uc *ReplyUsecase) ResolveRefs(ctx context.Context, author, rkey string) (handles.ReplyRef, error) {
	ctx, span := tracer.Start(ctx, "Reply.Usecase.ResolveRefs")
	defer span.End()

	parent, err := uc.posts.GetPost(ctx, author, handles.PostCollection, rkey)
	if err != nil {
		span.RecordError(err)
		return handles.ReplyRef{}, errors.Wrap(err, "failed to fetch parent post")
	}

	root := parent
	if parent.Value.Reply != nil {
		repo, collection, rootKey, err := handles.ParseATURI(parent.Value.Reply.Root.URI)
		if err != nil {
			span.RecordError(err)
			return handles.ReplyRef{}, errors.Wrap(err, "invalid thread root uri")
		}
		root, err = uc.posts.GetPost(ctx, repo, collection, rootKey)
		if err != nil {
			span.RecordError(err)
			return handles.ReplyRef{}, errors.Wrap(err, "failed to fetch thread root")
		}
	}

	return handles.ReplyRef{
		Root:   handles.StrongRef{URI: root.URI, CID: root.CID},
		Parent: handles.StrongRef{URI: parent.URI, CID: parent.CID},
	}, nil
}

// Reply posts text in the thread of trigger. References are resolved before
// anything is written; a failed resolution means no post.
func (uc *ReplyUsecase) Reply(ctx context.Context, trigger Trigger, text string) error {
	ctx, span := tracer.Start(ctx, "Reply.Usecase.Reply")
	defer span.End()
	span.SetAttributes(attribute.String("trigger", trigger.URI()))

	refs, err := uc.ResolveRefs(ctx, trigger.Author, trigger.RKey)
	if err != nil {
		span.RecordError(err)
		return err
	}

	now := uc.now().UTC()
	post := handles.PostRecord{
		Type:      handles.PostCollection,
		Text:      text,
		Reply:     &refs,
		CreatedAt: now.Format(time.RFC3339Nano),
	}

	ref, err := uc.posts.CreatePost(ctx, post)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to create reply")
	}

	slog.InfoContext(
		ctx, "reply posted",
		slog.String("uri", ref.URI),
		slog.String("trigger", trigger.URI()),
		slog.String("module", "reply"),
	)

	if uc.signal != nil {
		event := domain.ReplyEvent{
			Command:   trigger.Command,
			Requester: trigger.Author,
			Trigger:   trigger.URI(),
			Reply:     ref.URI,
			CreatedAt: now,
		}
		if err := uc.signal.PublishReply(ctx, event); err != nil {
			slog.WarnContext(
				ctx, "failed to publish reply signal",
				slog.String("error", err.Error()),
				slog.String("module", "reply"),
			)
		}
	}

	return nil
}
