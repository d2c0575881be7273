package config

// DefaultContextName is the context used when none is selected. New
// contexts start as a copy of it.
const DefaultContextName = "default"

// Context is a named bundle of webhook settings.
type Context struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
	ThreadID   string `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
	Subject    string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// HasThread reports whether the next send replies into an existing thread.
func (c Context) HasThread() bool {
	return c.ThreadID != ""
}

// ClearThread forgets the thread so the next send starts a new one.
func (c *Context) ClearThread() {
	c.ThreadID = ""
}

// DisplayName returns the context name, or "Unknown" when it has none.
func (c Context) DisplayName() string {
	if c.Name == "" {
		return "Unknown"
	}
	return c.Name
}
