package cli

import (
	"context"
	"os"

	"github.com/ksyq12/discord-send/internal/config"
	"github.com/ksyq12/discord-send/internal/input"
	"github.com/ksyq12/discord-send/internal/webhook"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	StoreOpener StoreOpener
	Sender      MessageSender
	Stdin       input.Source
	Getenv      func(string) string
}

// ContextStore is the part of *config.Store the CLI uses
type ContextStore interface {
	Get(name string) (config.Context, bool)
	GetOrCreate(name string) config.Context
	Put(name string, c config.Context)
	Update(name string, fn func(*config.Context)) config.Context
	ClearThread(name string) bool
	Delete(name string) bool
	Names() []string
	Snapshot() map[string]config.Context
	Close() error
}

// StoreOpener opens the context store at a path
type StoreOpener interface {
	Open(path string) (ContextStore, error)
}

// MessageSender posts a message for a named context and stores the updated
// context back
type MessageSender interface {
	SendNamed(ctx context.Context, store webhook.ContextStore, name string, msg webhook.Message, forceNew bool) (webhook.Response, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	StoreOpener: &realStoreOpener{},
	Sender:      &realSender{},
	Stdin:       input.NewStdinSource(),
	Getenv:      os.Getenv,
}

// Real implementations

type realStoreOpener struct{}

func (r *realStoreOpener) Open(path string) (ContextStore, error) {
	store, err := config.Open(path, config.WithLock(true))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// realSender builds the webhook sender when a message is sent, so that it
// picks up the parsed --timeout flag and the version set by SetVersion.
type realSender struct{}

func (r *realSender) SendNamed(ctx context.Context, store webhook.ContextStore, name string, msg webhook.Message, forceNew bool) (webhook.Response, error) {
	sender := webhook.New(
		webhook.WithTimeout(timeout),
		webhook.WithUserAgent("discord-send/"+version),
	)
	return sender.SendNamed(ctx, store, name, msg, forceNew)
}
