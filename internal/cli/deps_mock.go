package cli

import (
	"context"

	"github.com/ksyq12/discord-send/internal/config"
	"github.com/ksyq12/discord-send/internal/input"
	"github.com/ksyq12/discord-send/internal/webhook"
)

// MockStore is an in-memory ContextStore that records Close calls
type MockStore struct {
	*config.Store
	CloseErr   error
	CloseCalls int
}

// NewMockStore creates a store holding only the default context
func NewMockStore() *MockStore {
	store, err := config.Open("mock-contexts.json", config.WithAutoload(false), config.WithAutosave(false))
	if err != nil {
		panic(err)
	}
	return &MockStore{Store: store}
}

// WithContexts stores each context under its name
func (m *MockStore) WithContexts(contexts ...config.Context) *MockStore {
	for _, c := range contexts {
		m.Put(c.Name, c)
	}
	return m
}

func (m *MockStore) Close() error {
	m.CloseCalls++
	return m.CloseErr
}

// MockStoreOpener is a test double for StoreOpener
type MockStoreOpener struct {
	Store *MockStore
	Err   error
	Paths []string
}

func (m *MockStoreOpener) Open(path string) (ContextStore, error) {
	m.Paths = append(m.Paths, path)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Store == nil {
		m.Store = NewMockStore()
	}
	return m.Store, nil
}

// SendCall records one SendNamed invocation
type SendCall struct {
	Context  config.Context
	Message  webhook.Message
	ForceNew bool
}

// MockSender is a test double for MessageSender. It frames threads like the
// real sender and assigns ThreadID (default "1000") to new posts.
type MockSender struct {
	Calls    []SendCall
	ThreadID string
	Err      error
}

func (m *MockSender) SendNamed(ctx context.Context, store webhook.ContextStore, name string, msg webhook.Message, forceNew bool) (webhook.Response, error) {
	c := store.GetOrCreate(name)
	m.Calls = append(m.Calls, SendCall{Context: c, Message: msg, ForceNew: forceNew})

	if forceNew {
		c.ClearThread()
	}
	if m.Err != nil {
		store.Put(name, c)
		return nil, m.Err
	}

	if !c.HasThread() {
		c.ThreadID = m.ThreadID
		if c.ThreadID == "" {
			c.ThreadID = "1000"
		}
	}
	store.Put(name, c)
	return webhook.Response{"id": c.ThreadID}, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			StoreOpener: &MockStoreOpener{Store: NewMockStore()},
			Sender:      &MockSender{},
			Stdin:       &input.StringSource{Terminal: true},
			Getenv:      func(string) string { return "" },
		},
	}
}

// WithStore sets the store returned by the opener
func (b *MockDependenciesBuilder) WithStore(store *MockStore) *MockDependenciesBuilder {
	b.deps.StoreOpener = &MockStoreOpener{Store: store}
	return b
}

// WithStoreOpener sets a custom store opener
func (b *MockDependenciesBuilder) WithStoreOpener(opener StoreOpener) *MockDependenciesBuilder {
	b.deps.StoreOpener = opener
	return b
}

// WithSender sets a custom message sender
func (b *MockDependenciesBuilder) WithSender(sender MessageSender) *MockDependenciesBuilder {
	b.deps.Sender = sender
	return b
}

// WithStdinInput makes stdin a pipe carrying input
func (b *MockDependenciesBuilder) WithStdinInput(in string) *MockDependenciesBuilder {
	b.deps.Stdin = input.NewStringSource(in)
	return b
}

// WithEnv sets the environment seen by the CLI
func (b *MockDependenciesBuilder) WithEnv(env map[string]string) *MockDependenciesBuilder {
	b.deps.Getenv = func(key string) string { return env[key] }
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
