package handles

const (
	PostCollection   string = "app.bsky.feed.post"
	DomainCollection string = "tools.queerlil.handles.domain"
	PageCollection   string = "tools.queerlil.handles.page"

	MentionFeature string = "app.bsky.richtext.facet#mention"

	OperationCreate string = "create"
)

// Event is a single Jetstream message.
type Event struct {
	DID    string  `json:"did"`
	TimeUS int64   `json:"time_us"`
	Kind   string  `json:"kind"`
	Commit *Commit `json:"commit,omitempty"`
}

type Commit struct {
	Rev        string      `json:"rev"`
	Operation  string      `json:"operation"`
	Collection string      `json:"collection"`
	RKey       string      `json:"rkey"`
	CID        string      `json:"cid"`
	Record     *PostRecord `json:"record,omitempty"`
}

type PostRecord struct {
	Type      string    `json:"$type,omitempty"`
	Text      string    `json:"text"`
	Facets    []Facet   `json:"facets,omitempty"`
	Embed     *Embed    `json:"embed,omitempty"`
	Reply     *ReplyRef `json:"reply,omitempty"`
	Langs     []string  `json:"langs,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type Facet struct {
	Index    FacetIndex `json:"index"`
	Features []Feature  `json:"features"`
}

// FacetIndex is a byte range into the UTF-8 post text.
type FacetIndex struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

type Feature struct {
	Type string `json:"$type"`
	DID  string `json:"did,omitempty"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

type Embed struct {
	Type     string    `json:"$type"`
	External *External `json:"external,omitempty"`
}

type External struct {
	URI         string `json:"uri"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// StrongRef names a specific version of a record.
type StrongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type ReplyRef struct {
	Root   StrongRef `json:"root"`
	Parent StrongRef `json:"parent"`
}

// Record is the body of a com.atproto.repo.getRecord response.
type Record[T any] struct {
	URI   string `json:"uri"`
	CID   string `json:"cid"`
	Value T      `json:"value"`
}

type DomainRecord struct {
	Type      string `json:"$type"`
	Domain    string `json:"domain"`
	CreatedAt string `json:"createdAt"`
}

type PageRecord struct {
	Type      string `json:"$type"`
	Href      string `json:"href"`
	CreatedAt string `json:"createdAt"`
}
