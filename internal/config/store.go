package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ksyq12/discord-send/internal/errors"
	"github.com/ksyq12/discord-send/internal/logger"
)

// Store maps context names to contexts and persists them as one JSON file.
//
// The store owns its contexts: every accessor returns a copy, and changes
// are made through Put, Update, Delete and ClearThread.
type Store struct {
	path     string
	autoload bool
	autosave bool
	locking  bool

	lock     *FileLock
	contexts map[string]Context
	closed   bool
}

// Option configures a Store.
type Option func(*Store)

// WithAutoload controls whether Open reads the file. Defaults to true.
func WithAutoload(enabled bool) Option {
	return func(s *Store) {
		s.autoload = enabled
	}
}

// WithAutosave controls whether Close writes the file. Defaults to true.
func WithAutosave(enabled bool) Option {
	return func(s *Store) {
		s.autosave = enabled
	}
}

// WithLock holds an exclusive lock on <path>.lock from Open until Close, so
// that concurrent invocations do not overwrite each other's changes.
func WithLock(enabled bool) Option {
	return func(s *Store) {
		s.locking = enabled
	}
}

func defaultContexts() map[string]Context {
	return map[string]Context{
		DefaultContextName: {Name: DefaultContextName},
	}
}

// Open creates a store backed by path and loads it. A missing file leaves
// the built-in default context in place. Callers must Close the store; that
// is where changes are written.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:     path,
		autoload: true,
		autosave: true,
		contexts: defaultContexts(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.locking {
		lock := NewFileLock(path + ".lock")
		logger.Debug("waiting for lock %s", lock.path)
		if err := lock.Lock(); err != nil {
			return nil, errors.Storage("failed to lock contexts file", err)
		}
		s.lock = lock
	}

	if s.autoload {
		if err := s.Load(); err != nil {
			// Nothing was loaded, so nothing may be saved over the bad file.
			_ = s.lock.Unlock()
			return nil, err
		}
	}

	return s, nil
}

// Load replaces the in-memory contexts with the file contents. A missing
// file is not an error. A default context is added if the file has none.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no contexts file at %s, using defaults", s.path)
		return nil
	}
	if err != nil {
		return errors.Storage(fmt.Sprintf("failed to read %s", s.path), err)
	}

	if err := validateDocument(data); err != nil {
		return errors.Storage(fmt.Sprintf("failed to parse %s", s.path), err)
	}

	contexts := make(map[string]Context)
	if err := json.Unmarshal(data, &contexts); err != nil {
		return errors.Storage(fmt.Sprintf("failed to parse %s", s.path), err)
	}
	if _, ok := contexts[DefaultContextName]; !ok {
		contexts[DefaultContextName] = Context{Name: DefaultContextName}
	}

	s.contexts = contexts
	logger.DebugFields("contexts loaded", map[string]any{
		"path":     s.path,
		"contexts": len(contexts),
	})
	return nil
}

// Save writes every context to the file, creating parent directories.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Storage("failed to create config directory", err)
	}

	data, err := json.MarshalIndent(s.contexts, "", "    ")
	if err != nil {
		return errors.Storage("failed to encode contexts", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Storage(fmt.Sprintf("failed to write %s", s.path), err)
	}

	logger.DebugFields("contexts saved", map[string]any{
		"path":     s.path,
		"contexts": len(s.contexts),
	})
	return nil
}

// Close saves the store when autosave is enabled and releases the lock.
// Only the first call has any effect.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.autosave {
		err = s.Save()
	}
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = errors.Storage("failed to release contexts lock", unlockErr)
	}
	return err
}

// Get returns the named context without creating it.
func (s *Store) Get(name string) (Context, bool) {
	c, ok := s.contexts[name]
	return c, ok
}

// GetOrCreate returns the named context. An unknown name is registered as a
// copy of the default context; later changes to either do not affect the
// other.
func (s *Store) GetOrCreate(name string) Context {
	if c, ok := s.contexts[name]; ok {
		return c
	}
	c := s.contexts[DefaultContextName]
	c.Name = name
	s.contexts[name] = c
	logger.Debug("created context %q from %q", name, DefaultContextName)
	return c
}

// Put stores c under name, replacing any existing context.
func (s *Store) Put(name string, c Context) {
	s.contexts[name] = c
}

// Update applies fn to the named context (creating it if needed), stores
// the result and returns it.
func (s *Store) Update(name string, fn func(*Context)) Context {
	c := s.GetOrCreate(name)
	fn(&c)
	s.contexts[name] = c
	return c
}

// ClearThread removes the thread id of the named context and reports
// whether it had one.
func (s *Store) ClearThread(name string) bool {
	had := false
	s.Update(name, func(c *Context) {
		had = c.HasThread()
		c.ClearThread()
	})
	return had
}

// Delete removes the named context and reports whether it existed.
func (s *Store) Delete(name string) bool {
	if _, ok := s.contexts[name]; !ok {
		return false
	}
	delete(s.contexts, name)
	return true
}

// Names returns the context names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.contexts))
	for name := range s.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of all contexts keyed by name. The key is the
// context's name; the name field stored inside a context is informational
// and may differ in files written by older tools.
func (s *Store) Snapshot() map[string]Context {
	snap := make(map[string]Context, len(s.contexts))
	for name, c := range s.contexts {
		snap[name] = c
	}
	return snap
}

