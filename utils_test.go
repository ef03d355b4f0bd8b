package handles

import "testing"

func TestParseATURI(t *testing.T) {
	repo, collection, rkey, err := ParseATURI("at://did:plc:abc/app.bsky.feed.post/3l3qo2vuowo2b")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if repo != "did:plc:abc" || collection != PostCollection || rkey != "3l3qo2vuowo2b" {
		t.Fatalf("unexpected parts %s %s %s", repo, collection, rkey)
	}

	for _, bad := range []string{"cc://did:plc:abc/x/y", "at://did:plc:abc/app.bsky.feed.post", "at://did:plc:abc//rkey"} {
		if _, _, _, err := ParseATURI(bad); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}

func TestComposeATURIRoundTrip(t *testing.T) {
	uri := ComposeATURI("did:plc:abc", PageCollection, "fyi.vgay.is.name.index")
	repo, collection, rkey, err := ParseATURI(uri)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if repo != "did:plc:abc" || collection != PageCollection || rkey != "fyi.vgay.is.name.index" {
		t.Fatalf("unexpected parts %s %s %s", repo, collection, rkey)
	}
}

func TestPageKey(t *testing.T) {
	if got := ReverseDomain("name.is.vgay.fyi"); got != "fyi.vgay.is.name" {
		t.Fatalf("unexpected reverse %s", got)
	}
	if got := ReverseDomain("localhost"); got != "localhost" {
		t.Fatalf("unexpected reverse %s", got)
	}
	if got := PageKey("name.is.vgay.fyi", "about__html"); got != "fyi.vgay.is.name.about__html" {
		t.Fatalf("unexpected key %s", got)
	}
}
