package stream

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ReconnectPolicy decides what happens after the feed connection drops.
type ReconnectPolicy interface {
	// Next returns the delay before the next dial, or false to stop listening.
	Next(err error) (time.Duration, bool)
	// Reset is called once a connection has been established.
	Reset()
}

// NoReconnect stops the listener on the first disconnect.
type NoReconnect struct{}

func (NoReconnect) Next(error) (time.Duration, bool) { return 0, false }
func (NoReconnect) Reset()                           {}

// BackoffReconnect redials with exponential backoff. A zero maxElapsed keeps
// retrying forever.
type BackoffReconnect struct {
	b backoff.BackOff
}

func NewBackoffReconnect(initial, max, maxElapsed time.Duration) *BackoffReconnect {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = initial
	eb.MaxInterval = max
	eb.MaxElapsedTime = maxElapsed
	eb.Reset()
	return &BackoffReconnect{b: eb}
}

func (p *BackoffReconnect) Next(error) (time.Duration, bool) {
	d := p.b.NextBackOff()
	if d == backoff.Stop {
		return 0, false
	}
	return d, true
}

func (p *BackoffReconnect) Reset() {
	p.b.Reset()
}
