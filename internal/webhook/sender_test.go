package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/discord-send/internal/config"
	"github.com/ksyq12/discord-send/internal/errors"
)

var testDay = time.Date(2024, 3, 15, 18, 45, 0, 0, time.Local)

// recordedRequest is what the fake webhook saw.
type recordedRequest struct {
	Query url.Values
	Form  url.Values
	Agent string
}

// fakeWebhook answers every request with status, contentType and body and
// records what it received.
func fakeWebhook(t *testing.T, status int, contentType, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		requests = append(requests, recordedRequest{
			Query: r.URL.Query(),
			Form:  r.PostForm,
			Agent: r.UserAgent(),
		})
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		} else {
			w.Header()["Content-Type"] = nil
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestSender(server *httptest.Server) *Sender {
	return New(
		WithHTTPClient(server.Client()),
		WithClock(func() time.Time { return testDay }),
		WithUserAgent("discord-send/test"),
	)
}

// failingTransport fails the test if any request is attempted.
type failingTransport struct {
	t *testing.T
}

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Fatal("no request should be sent")
	return nil, nil
}

func TestSend_ThreadContinuity(t *testing.T) {
	server, requests := fakeWebhook(t, http.StatusOK, "application/json", `{"id": "1207631870224134184", "channel_id": "1207631870224134184"}`)
	sender := newTestSender(server)

	c := config.Context{Name: "ci", WebhookURL: server.URL + "/api/webhooks/1/token", Subject: "Nightly build"}

	c, resp, err := sender.Send(context.Background(), c, Message{Content: "build started"}, false)
	require.NoError(t, err)
	assert.Equal(t, "1207631870224134184", c.ThreadID)
	id, ok := resp.ID()
	require.True(t, ok)
	assert.Equal(t, "1207631870224134184", id)

	require.Len(t, *requests, 1)
	first := (*requests)[0]
	assert.Equal(t, "true", first.Query.Get("wait"))
	assert.False(t, first.Query.Has("thread_id"))
	assert.Equal(t, "build started", first.Form.Get("content"))
	assert.Equal(t, "2024-03-15 Nightly build", first.Form.Get("thread_name"))
	assert.False(t, first.Form.Has("thread_id"))
	assert.Equal(t, "discord-send/test", first.Agent)

	c, _, err = sender.Send(context.Background(), c, Message{Content: "build finished"}, false)
	require.NoError(t, err)
	assert.Equal(t, "1207631870224134184", c.ThreadID, "replies must not change the thread")

	require.Len(t, *requests, 2)
	second := (*requests)[1]
	assert.Equal(t, "1207631870224134184", second.Query.Get("thread_id"))
	assert.Equal(t, "1207631870224134184", second.Form.Get("thread_id"))
	assert.False(t, second.Form.Has("thread_name"))
}

func TestSend_ForceNewMessage(t *testing.T) {
	t.Run("starts a new thread", func(t *testing.T) {
		server, requests := fakeWebhook(t, http.StatusOK, "application/json", `{"id": "2"}`)
		sender := newTestSender(server)

		c := config.Context{Name: "ci", WebhookURL: server.URL, ThreadID: "1"}
		c, _, err := sender.Send(context.Background(), c, Message{Content: "again"}, true)
		require.NoError(t, err)
		assert.Equal(t, "2", c.ThreadID)

		got := (*requests)[0]
		assert.False(t, got.Query.Has("thread_id"))
		assert.False(t, got.Form.Has("thread_id"))
		assert.Equal(t, "2024-03-15 Potato", got.Form.Get("thread_name"))
	})

	t.Run("old thread is dropped even on failure", func(t *testing.T) {
		server, _ := fakeWebhook(t, http.StatusInternalServerError, "application/json", `{"message": "oops"}`)
		sender := newTestSender(server)

		c := config.Context{Name: "ci", WebhookURL: server.URL, ThreadID: "1"}
		c, _, err := sender.Send(context.Background(), c, Message{Content: "again"}, true)
		require.Error(t, err)
		assert.Empty(t, c.ThreadID)
	})

	t.Run("old thread is dropped before the webhook check", func(t *testing.T) {
		sender := New(WithHTTPClient(&http.Client{Transport: failingTransport{t}}))

		c, _, err := sender.Send(context.Background(), config.Context{Name: "ci", ThreadID: "1"}, Message{Content: "x"}, true)
		require.Error(t, err)
		assert.Empty(t, c.ThreadID)
	})
}

func TestSend_MissingWebhook(t *testing.T) {
	sender := New(WithHTTPClient(&http.Client{Transport: failingTransport{t}}))

	tests := []struct {
		name    string
		context config.Context
		want    string
	}{
		{"named context", config.Context{Name: "ci"}, `"ci"`},
		{"unnamed context", config.Context{}, `"Unknown"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := sender.Send(context.Background(), tt.context, Message{Content: "hello"}, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrBadConfig))
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "--webhook-url")
		})
	}
}

func TestSend_InvalidWebhookURL(t *testing.T) {
	sender := New(WithHTTPClient(&http.Client{Transport: failingTransport{t}}))

	_, _, err := sender.Send(context.Background(), config.Context{Name: "ci", WebhookURL: "discord.com/api/webhooks/1/x"}, Message{Content: "hello"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadConfig))
}

func TestSend_BadResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		contains    []string
	}{
		{
			name:        "not found",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"message": "Unknown Webhook", "code": 10015}`,
			contains:    []string{"404", "Unknown Webhook"},
		},
		{
			name:        "html page",
			status:      http.StatusOK,
			contentType: "text/html",
			body:        "<html>{not json",
			contains:    []string{"200", "NOT json"},
		},
		{
			name:     "missing content type",
			status:   http.StatusOK,
			body:     `{"id": "1"}`,
			contains: []string{"NOT json"},
		},
		{
			name:        "content type with parameters",
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body:        `{"id": "1"}`,
			contains:    []string{"NOT json"},
		},
		{
			name:        "invalid json body",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"id": `,
			contains:    []string{"decoding response"},
		},
		{
			name:        "no id",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"content": "hi"}`,
			contains:    []string{"no message id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := fakeWebhook(t, tt.status, tt.contentType, tt.body)
			sender := newTestSender(server)

			c, _, err := sender.Send(context.Background(), config.Context{Name: "ci", WebhookURL: server.URL}, Message{Content: "hi"}, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrBadResponse), "got %v", err)
			for _, want := range tt.contains {
				assert.Contains(t, err.Error(), want)
			}
			assert.Empty(t, c.ThreadID)
			assert.Len(t, *requests, 1)
		})
	}
}

func TestSend_KeepsWebhookQuery(t *testing.T) {
	server, requests := fakeWebhook(t, http.StatusOK, "application/json", `{"id": "5"}`)
	sender := newTestSender(server)

	c := config.Context{Name: "ci", WebhookURL: server.URL + "?with_components=true", ThreadID: "4"}
	_, _, err := sender.Send(context.Background(), c, Message{Content: "hi"}, false)
	require.NoError(t, err)

	q := (*requests)[0].Query
	assert.Equal(t, "true", q.Get("with_components"))
	assert.Equal(t, "true", q.Get("wait"))
	assert.Equal(t, "4", q.Get("thread_id"))
}

func TestSend_TransportErrorHidesToken(t *testing.T) {
	server, _ := fakeWebhook(t, http.StatusOK, "application/json", `{"id": "1"}`)
	sender := newTestSender(server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := config.Context{Name: "ci", WebhookURL: server.URL + "/api/webhooks/1/secret-token"}
	_, _, err := sender.Send(ctx, c, Message{Content: "hi"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotContains(t, err.Error(), "secret-token")
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestSend_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	sender := New(WithTimeout(50*time.Millisecond), WithClock(func() time.Time { return testDay }))

	start := time.Now()
	c := config.Context{Name: "ci", WebhookURL: server.URL + "/api/webhooks/1/token"}
	_, _, err := sender.Send(context.Background(), c, Message{Content: "hi"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &errors.SenderError{Code: errors.ErrCodeInternal}), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSendNamed_StoresContextBack(t *testing.T) {
	store, err := config.Open(t.TempDir()+"/contexts.json", config.WithAutoload(false))
	require.NoError(t, err)

	t.Run("success records thread", func(t *testing.T) {
		server, _ := fakeWebhook(t, http.StatusOK, "application/json", `{"id": "77"}`)
		store.Put("ci", config.Context{Name: "ci", WebhookURL: server.URL})

		_, err := newTestSender(server).SendNamed(context.Background(), store, "ci", Message{Content: "hi"}, false)
		require.NoError(t, err)

		c, _ := store.Get("ci")
		assert.Equal(t, "77", c.ThreadID)
	})

	t.Run("failure still stores cleared thread", func(t *testing.T) {
		server, _ := fakeWebhook(t, http.StatusBadRequest, "application/json", `{}`)
		store.Put("ci", config.Context{Name: "ci", WebhookURL: server.URL, ThreadID: "77"})

		_, err := newTestSender(server).SendNamed(context.Background(), store, "ci", Message{Content: "hi"}, true)
		require.Error(t, err)

		c, _ := store.Get("ci")
		assert.Empty(t, c.ThreadID)
	})

	t.Run("unknown name inherits default", func(t *testing.T) {
		server, _ := fakeWebhook(t, http.StatusOK, "application/json", `{"id": "9"}`)
		store.Put(config.DefaultContextName, config.Context{Name: config.DefaultContextName, WebhookURL: server.URL})

		_, err := newTestSender(server).SendNamed(context.Background(), store, "fresh", Message{Content: "hi"}, false)
		require.NoError(t, err)

		c, ok := store.Get("fresh")
		require.True(t, ok)
		assert.Equal(t, "9", c.ThreadID)
		def, _ := store.Get(config.DefaultContextName)
		assert.Empty(t, def.ThreadID)
	})
}

func TestThreadName(t *testing.T) {
	assert.Equal(t, "2024-03-15 Potato", ThreadName(testDay, ""))
	assert.Equal(t, "2024-03-15 Deploys", ThreadName(testDay, "Deploys"))
}

func TestResponseID(t *testing.T) {
	tests := []struct {
		name   string
		resp   Response
		want   string
		wantOK bool
	}{
		{"string", Response{"id": "123"}, "123", true},
		{"empty string", Response{"id": ""}, "", false},
		{"number", Response{"id": float64(42)}, "42", true},
		{"missing", Response{}, "", false},
		{"wrong type", Response{"id": true}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.resp.ID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageValues(t *testing.T) {
	v := Message{Content: "a b", ThreadName: "2024-03-15 Potato"}.Values()
	assert.Equal(t, "content=a+b&thread_name=2024-03-15+Potato", v.Encode())
	assert.False(t, strings.Contains(v.Encode(), "thread_id"))
}
