package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

func TestReplyToTopLevelPost(t *testing.T) {
	posts := newMockPostRepo()
	parentURI := posts.add(requester, "3kabc", "bafyparent", nil)
	signal := &mockSignal{}

	uc := NewReplyUsecase(posts, signal)
	uc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	err := uc.Reply(context.Background(), Trigger{Author: requester, RKey: "3kabc", Command: "domains"}, "hi")
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	if len(posts.created) != 1 {
		t.Fatalf("expected one post got %d", len(posts.created))
	}
	post := posts.created[0]
	if post.Text != "hi" || post.Type != handles.PostCollection {
		t.Fatalf("unexpected post %+v", post)
	}
	if post.Reply.Root.URI != parentURI || post.Reply.Parent.URI != parentURI || post.Reply.Root.CID != "bafyparent" {
		t.Fatalf("expected root == parent, got %+v", post.Reply)
	}
	if post.CreatedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected createdAt %s", post.CreatedAt)
	}

	if len(signal.events) != 1 || signal.events[0].Command != "domains" || signal.events[0].Trigger != parentURI {
		t.Fatalf("unexpected signal events %+v", signal.events)
	}
}

func TestReplyInsideThread(t *testing.T) {
	posts := newMockPostRepo()
	rootURI := posts.add("did:plc:bob", "3kroot", "bafyroot", nil)
	parentURI := posts.add(requester, "3kabc", "bafyparent", &handles.ReplyRef{
		Root:   handles.StrongRef{URI: rootURI, CID: "bafyroot"},
		Parent: handles.StrongRef{URI: rootURI, CID: "bafyroot"},
	})

	uc := NewReplyUsecase(posts, nil)
	refs, err := uc.ResolveRefs(context.Background(), requester, "3kabc")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if refs.Root.URI != rootURI || refs.Root.CID != "bafyroot" {
		t.Fatalf("unexpected root %+v", refs.Root)
	}
	if refs.Parent.URI != parentURI || refs.Parent.CID != "bafyparent" {
		t.Fatalf("unexpected parent %+v", refs.Parent)
	}
	if len(posts.fetched) != 2 {
		t.Fatalf("expected two fetches got %v", posts.fetched)
	}
}

func TestReplyDroppedWhenResolutionFails(t *testing.T) {
	posts := newMockPostRepo()
	posts.add(requester, "3kabc", "bafyparent", &handles.ReplyRef{
		Root: handles.StrongRef{URI: "at://did:plc:gone/app.bsky.feed.post/3kmissing"},
	})
	signal := &mockSignal{}
	uc := NewReplyUsecase(posts, signal)

	err := uc.Reply(context.Background(), Trigger{Author: requester, RKey: "3kabc"}, "hi")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	err = uc.Reply(context.Background(), Trigger{Author: requester, RKey: "3knothere"}, "hi")
	if err == nil {
		t.Fatalf("expected error for missing parent")
	}

	if len(posts.created) != 0 || len(signal.events) != 0 {
		t.Fatalf("expected no post and no signal")
	}
}

func TestReplySignalFailureIsNotFatal(t *testing.T) {
	posts := newMockPostRepo()
	posts.add(requester, "3kabc", "bafyparent", nil)
	uc := NewReplyUsecase(posts, &mockSignal{err: errors.New("redis down")})

	if err := uc.Reply(context.Background(), Trigger{Author: requester, RKey: "3kabc"}, "hi"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if len(posts.created) != 1 {
		t.Fatalf("expected post to be created")
	}
}
