package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ksyq12/discord-send/internal/config"
	"github.com/ksyq12/discord-send/internal/errors"
	"github.com/ksyq12/discord-send/internal/logger"
)

// DefaultTimeout bounds a single webhook request.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Sender posts messages to Discord webhooks.
type Sender struct {
	client    *http.Client
	now       func() time.Time
	userAgent string
}

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient sets the HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) {
		s.client = c
	}
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		s.client = &http.Client{Timeout: d}
	}
}

// WithClock sets the time source used to date new threads.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		s.now = now
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Sender) {
		s.userAgent = ua
	}
}

// New creates a Sender.
func New(opts ...Option) *Sender {
	s := &Sender{
		client:    &http.Client{Timeout: DefaultTimeout},
		now:       time.Now,
		userAgent: "discord-send",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts msg using the settings of c and returns c updated with the
// thread the message landed in.
//
// When forceNew is set, or c has no thread yet, the thread id is dropped and
// the message opens a new forum post titled by ThreadName. Otherwise it is
// posted as a reply into c.ThreadID. After a successful new post the id from
// the response becomes the context's thread id.
//
// The returned context is valid even when err is not nil; a forced new post
// forgets the old thread regardless of the outcome.
func (s *Sender) Send(ctx context.Context, c config.Context, msg Message, forceNew bool) (config.Context, Response, error) {
	if forceNew || !c.HasThread() {
		c.ClearThread()
		msg.ThreadID = ""
		msg.ThreadName = ThreadName(s.now(), c.Subject)
	} else {
		msg.ThreadID = c.ThreadID
	}

	if c.WebhookURL == "" {
		return c, nil, errors.BadConfig(c.DisplayName())
	}

	endpoint, err := endpointURL(c.WebhookURL, c.ThreadID)
	if err != nil {
		return c, nil, errors.WithContext(errors.Wrap(errors.ErrCodeBadConfig, "invalid webhook_url", err), c.DisplayName())
	}

	resp, err := s.post(ctx, endpoint, msg)
	if err != nil {
		return c, nil, err
	}

	if !c.HasThread() {
		id, ok := resp.ID()
		if !ok {
			return c, resp, errors.BadResponse(0, "response has no message id")
		}
		c.ThreadID = id
		logger.Debug("context %q now replies into thread %s", c.DisplayName(), id)
	}

	return c, resp, nil
}

// ContextStore is the part of config.Store that SendNamed needs.
type ContextStore interface {
	GetOrCreate(name string) config.Context
	Put(name string, c config.Context)
}

// SendNamed resolves the named context from store, sends, and stores the
// updated context back whether or not the send succeeded.
func (s *Sender) SendNamed(ctx context.Context, store ContextStore, name string, msg Message, forceNew bool) (Response, error) {
	c := store.GetOrCreate(name)
	updated, resp, err := s.Send(ctx, c, msg, forceNew)
	store.Put(name, updated)
	return resp, err
}

func (s *Sender) post(ctx context.Context, endpoint *url.URL, msg Message) (Response, error) {
	logger.DebugFields("posting message", map[string]any{
		"url":         redact(endpoint),
		"thread_id":   msg.ThreadID,
		"thread_name": msg.ThreadName,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(msg.Values().Encode()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "creating request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if urlErr, ok := err.(*url.Error); ok {
			urlErr.URL = redact(endpoint)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "sending message", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "reading response body", err)
	}

	contentType := resp.Header.Get("Content-Type")
	logger.DebugFields("webhook responded", map[string]any{
		"status":       resp.StatusCode,
		"content_type": contentType,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.BadResponse(resp.StatusCode,
			fmt.Sprintf("response code %d and text %q", resp.StatusCode, string(body)))
	}

	if contentType != "application/json" {
		return nil, errors.BadResponse(resp.StatusCode,
			fmt.Sprintf("response code was %d however response is NOT json, is your webhook correct?", resp.StatusCode))
	}

	var parsed Response
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil, &errors.SenderError{
			Code:    errors.ErrCodeBadResponse,
			Message: "decoding response",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return parsed, nil
}

// endpointURL adds wait=true, and thread_id when replying, to the query of
// the webhook URL.
func endpointURL(webhookURL, threadID string) (*url.URL, error) {
	u, err := url.Parse(webhookURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", webhookURL)
	}

	q := u.Query()
	q.Set("wait", "true")
	if threadID != "" {
		q.Set("thread_id", threadID)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

// redact hides the webhook token, the last path segment, so URLs can be
// logged and shown in errors.
func redact(u *url.URL) string {
	cp := *u
	if i := strings.LastIndex(cp.Path, "/"); i >= 0 && i < len(cp.Path)-1 {
		cp.Path = cp.Path[:i+1] + "REDACTED"
		cp.RawPath = ""
	}
	return cp.String()
}
