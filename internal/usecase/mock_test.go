package usecase

import (
	"context"
	"errors"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

// --- mocks ---

type mockReplier struct {
	replies []string
	err     error
}

func (m *mockReplier) Reply(ctx context.Context, trigger Trigger, text string) error {
	if m.err != nil {
		return m.err
	}
	m.replies = append(m.replies, text)
	return nil
}

type mockRecordRepo struct {
	domains  map[string]handles.DomainRecord
	pages    map[string]handles.PageRecord
	getErr   error
	putCalls int
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{
		domains: map[string]handles.DomainRecord{},
		pages:   map[string]handles.PageRecord{},
	}
}

func (m *mockRecordRepo) GetDomain(ctx context.Context, owner string) (handles.DomainRecord, error) {
	if m.getErr != nil {
		return handles.DomainRecord{}, m.getErr
	}
	record, ok := m.domains[owner]
	if !ok {
		return handles.DomainRecord{}, domain.NotFoundError{Resource: "record"}
	}
	return record, nil
}

func (m *mockRecordRepo) PutDomain(ctx context.Context, owner string, record handles.DomainRecord) error {
	m.putCalls++
	m.domains[owner] = record
	return nil
}

func (m *mockRecordRepo) GetPage(ctx context.Context, rkey string) (handles.PageRecord, error) {
	record, ok := m.pages[rkey]
	if !ok {
		return handles.PageRecord{}, domain.NotFoundError{Resource: "record"}
	}
	return record, nil
}

func (m *mockRecordRepo) PutPage(ctx context.Context, rkey string, record handles.PageRecord) error {
	m.putCalls++
	m.pages[rkey] = record
	return nil
}

type changeCall struct {
	op     string
	handle string
	did    string
}

type mockChanger struct {
	result domain.ChangeResult
	err    error
	calls  []changeCall
}

func (m *mockChanger) Add(ctx context.Context, handle, did string) (domain.ChangeResult, error) {
	m.calls = append(m.calls, changeCall{op: "add", handle: handle, did: did})
	return m.result, m.err
}

func (m *mockChanger) Remove(ctx context.Context, handle, did string) (domain.ChangeResult, error) {
	m.calls = append(m.calls, changeCall{op: "remove", handle: handle, did: did})
	return m.result, m.err
}

type mockListing struct {
	entries []domain.HandleEntry
	reads   int
}

func (m *mockListing) List(ctx context.Context) ([]domain.HandleEntry, error) {
	m.reads++
	if m.entries == nil {
		return nil, errors.New("listing unavailable")
	}
	return m.entries, nil
}

type mockPostRepo struct {
	posts   map[string]handles.Record[handles.PostRecord]
	created []handles.PostRecord
	fetched []string
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: map[string]handles.Record[handles.PostRecord]{}}
}

func (m *mockPostRepo) add(repo, rkey, cid string, reply *handles.ReplyRef) string {
	uri := handles.ComposeATURI(repo, handles.PostCollection, rkey)
	m.posts[uri] = handles.Record[handles.PostRecord]{
		URI:   uri,
		CID:   cid,
		Value: handles.PostRecord{Text: "post " + rkey, Reply: reply},
	}
	return uri
}

func (m *mockPostRepo) GetPost(ctx context.Context, repo, collection, rkey string) (handles.Record[handles.PostRecord], error) {
	uri := handles.ComposeATURI(repo, collection, rkey)
	m.fetched = append(m.fetched, uri)
	post, ok := m.posts[uri]
	if !ok {
		return handles.Record[handles.PostRecord]{}, domain.NotFoundError{Resource: "record"}
	}
	return post, nil
}

func (m *mockPostRepo) CreatePost(ctx context.Context, post handles.PostRecord) (handles.StrongRef, error) {
	m.created = append(m.created, post)
	return handles.StrongRef{URI: "at://did:plc:bot/app.bsky.feed.post/reply", CID: "bafyreply"}, nil
}

type mockSignal struct {
	events []domain.ReplyEvent
	err    error
}

func (m *mockSignal) PublishReply(ctx context.Context, event domain.ReplyEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockFetcher struct {
	body    string
	err     error
	fetched []string
}

func (m *mockFetcher) Fetch(ctx context.Context, href string) (string, error) {
	m.fetched = append(m.fetched, href)
	return m.body, m.err
}
