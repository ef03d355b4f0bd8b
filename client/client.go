package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/internal/domain"
)

const (
	defaultUserAgent = "handles-bot/1.0"
)

// Client speaks XRPC to a single PDS. Authenticated calls use the attached Session.
type Client struct {
	client    *http.Client
	base      http.RoundTripper
	userAgent string
	service   string
	session   *Session
}

type Option func(*Client)

func WithSession(s *Session) Option {
	return func(c *Client) { c.session = s }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

func New(service string, opts ...Option) *Client {
	// no Timeout by default: calls are bounded by their context only
	httpClient := http.Client{}

	c := &Client{
		client:    &httpClient,
		base:      http.DefaultTransport,
		userAgent: defaultUserAgent,
		service:   strings.TrimSuffix(service, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	httpClient.Transport = c

	slog.Debug("initialize client", slog.String("service", c.service), slog.String("module", "client"))
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return c.base.RoundTrip(req)
}

// HTTPClient exposes the underlying client so plain fetches share the transport.
func (c *Client) HTTPClient() *http.Client {
	return c.client
}

func (c *Client) Session() *Session {
	return c.session
}

// Error is an XRPC error body paired with its HTTP status.
type Error struct {
	StatusCode int    `json:"-"`
	Name       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("xrpc %s (%d): %s", e.Name, e.StatusCode, e.Message)
}

func isExpired(err error) bool {
	var xerr *Error
	return errors.As(err, &xerr) && xerr.Name == "ExpiredToken"
}

func isNotFound(err error) bool {
	var xerr *Error
	if !errors.As(err, &xerr) {
		return false
	}
	return xerr.Name == "RecordNotFound" || xerr.StatusCode == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, nsid string, params url.Values, body any, token string, response any) error {
	endpoint := c.service + "/xrpc/" + nsid
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	slog.DebugContext(ctx, "xrpc request", slog.String("method", method), slog.String("nsid", nsid), slog.String("module", "client"))

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		xerr := &Error{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, xerr)
		return xerr
	}

	if response == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

// call runs an authenticated request, refreshing an expired session once.
func (c *Client) call(ctx context.Context, method, nsid string, params url.Values, body any, response any) error {
	token := ""
	if c.session != nil {
		token = c.session.accessToken()
		if token != "" && c.session.expiresSoon(time.Now()) {
			slog.DebugContext(ctx, "access token about to expire, refreshing", slog.String("module", "client"))
			if err := c.Refresh(ctx); err != nil {
				return err
			}
			token = c.session.accessToken()
		}
	}

	err := c.do(ctx, method, nsid, params, body, token, response)
	if err == nil || token == "" || !isExpired(err) {
		return err
	}

	slog.InfoContext(ctx, "access token expired, refreshing", slog.String("module", "client"))
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	return c.do(ctx, method, nsid, params, body, c.session.accessToken(), response)
}

// GetRecord fetches repo/collection/rkey and decodes the envelope into result.
func (c *Client) GetRecord(ctx context.Context, repo, collection, rkey string, result any) error {
	params := url.Values{}
	params.Set("repo", repo)
	params.Set("collection", collection)
	params.Set("rkey", rkey)

	err := c.call(ctx, http.MethodGet, "com.atproto.repo.getRecord", params, nil, result)
	if err != nil {
		if isNotFound(err) {
			return domain.NotFoundError{Resource: "record"}
		}
		return errors.Wrapf(err, "failed to get record %s", handles.ComposeATURI(repo, collection, rkey))
	}
	return nil
}

type putRecordInput struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	RKey       string `json:"rkey,omitempty"`
	Record     any    `json:"record"`
}

func (c *Client) PutRecord(ctx context.Context, repo, collection, rkey string, record any) (handles.StrongRef, error) {
	var ref handles.StrongRef
	input := putRecordInput{Repo: repo, Collection: collection, RKey: rkey, Record: record}
	err := c.call(ctx, http.MethodPost, "com.atproto.repo.putRecord", nil, input, &ref)
	if err != nil {
		return handles.StrongRef{}, errors.Wrapf(err, "failed to put record %s", handles.ComposeATURI(repo, collection, rkey))
	}
	return ref, nil
}

func (c *Client) CreateRecord(ctx context.Context, repo, collection string, record any) (handles.StrongRef, error) {
	var ref handles.StrongRef
	input := putRecordInput{Repo: repo, Collection: collection, Record: record}
	err := c.call(ctx, http.MethodPost, "com.atproto.repo.createRecord", nil, input, &ref)
	if err != nil {
		return handles.StrongRef{}, errors.Wrapf(err, "failed to create record in %s", collection)
	}
	return ref, nil
}
