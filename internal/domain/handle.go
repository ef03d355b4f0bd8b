package domain

import "time"

// ChangeResult is the raw upstream answer of the handle side-channel.
type ChangeResult struct {
	StatusCode int
	Body       string
}

func (r ChangeResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HandleEntry is one handle -> owner DID mapping from the listing snapshot.
type HandleEntry struct {
	Handle string
	Owner  string
}

// ReplyEvent is published after the bot has answered a command.
type ReplyEvent struct {
	Command   string    `json:"command"`
	Requester string    `json:"requester"`
	Trigger   string    `json:"trigger"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}
