package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/usecase"
)

// Dispatcher runs a sanitized command for the post that carried it.
type Dispatcher interface {
	Dispatch(ctx context.Context, trigger usecase.Trigger, message string) error
}

// Listener consumes a Jetstream subscription and feeds bot mentions to the
// dispatcher. Messages are handled one at a time, in arrival order.
type Listener struct {
	endpoint   string
	target     string
	dispatcher Dispatcher
	policy     ReconnectPolicy
	dialer     *websocket.Dialer
}

func NewListener(endpoint, target string, dispatcher Dispatcher, policy ReconnectPolicy) *Listener {
	if policy == nil {
		policy = NoReconnect{}
	}
	return &Listener{
		endpoint:   endpoint,
		target:     target,
		dispatcher: dispatcher,
		policy:     policy,
		dialer:     websocket.DefaultDialer,
	}
}

// SubscribeURL builds the Jetstream subscribe URL filtered to collection.
func SubscribeURL(base, collection string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(err, "invalid jetstream url")
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/subscribe"
	}
	q := u.Query()
	q.Set("wantedCollections", collection)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run listens until ctx is done or the reconnect policy gives up.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay, ok := l.policy.Next(err)
		if !ok {
			return err
		}

		slog.InfoContext(
			ctx, "reconnecting to feed",
			slog.Duration("delay", delay),
			slog.String("module", "stream"),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.endpoint, nil)
	if err != nil {
		slog.ErrorContext(
			ctx, "WebSocket error observed",
			slog.String("error", err.Error()),
			slog.String("module", "stream"),
		)
		return errors.Wrap(err, "failed to dial feed")
	}
	defer conn.Close()

	slog.InfoContext(ctx, "Connected to the server", slog.String("endpoint", l.endpoint), slog.String("module", "stream"))
	l.policy.Reset()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeErr, ok := err.(*websocket.CloseError)
			if ok {
				slog.InfoContext(
					ctx, fmt.Sprintf("WebSocket closed: Code=%d, Reason=%s", closeErr.Code, closeErr.Text),
					slog.String("module", "stream"),
				)
			} else if ctx.Err() == nil {
				slog.ErrorContext(
					ctx, "WebSocket error observed",
					slog.String("error", err.Error()),
					slog.String("module", "stream"),
				)
			}
			return err
		}

		l.HandleMessage(ctx, data)
	}
}

// HandleMessage runs the mention pipeline for one raw feed message. Anything
// that is not a post creation with facets mentioning the target is dropped.
func (l *Listener) HandleMessage(ctx context.Context, data []byte) {
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}

	var event handles.Event
	if err := json.Unmarshal(data, &event); err != nil {
		slog.DebugContext(ctx, "invalid feed message", slog.String("error", err.Error()), slog.String("module", "stream"))
		return
	}

	commit := event.Commit
	if commit == nil {
		return
	}
	if commit.Collection != handles.PostCollection {
		return
	}
	if commit.Operation != "" && commit.Operation != handles.OperationCreate {
		return
	}
	if commit.Record == nil || commit.Record.Facets == nil {
		return
	}

	mention, ok := usecase.ExtractMention(commit.Record.Facets, l.target)
	if !ok {
		return
	}
	message := usecase.StripMention(commit.Record.Text, mention)

	trigger := usecase.Trigger{
		Author: event.DID,
		RKey:   commit.RKey,
		Embed:  commit.Record.Embed,
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(
				ctx, "panic while handling command",
				slog.Any("panic", r),
				slog.String("trigger", trigger.URI()),
				slog.String("module", "stream"),
			)
		}
	}()

	if err := l.dispatcher.Dispatch(ctx, trigger, message); err != nil {
		slog.ErrorContext(
			ctx, "failed to handle command",
			slog.String("error", err.Error()),
			slog.String("message", message),
			slog.String("trigger", trigger.URI()),
			slog.String("module", "stream"),
		)
	}
}
