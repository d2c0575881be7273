package webhook

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// DefaultSubject titles new threads for contexts without a subject.
const DefaultSubject = "Potato"

// Message is the form body posted to the webhook.
type Message struct {
	Content    string
	ThreadName string // set when starting a new forum post
	ThreadID   string // set when replying into an existing post
}

// Values encodes the message as form fields, omitting empty ones.
func (m Message) Values() url.Values {
	v := url.Values{}
	v.Set("content", m.Content)
	if m.ThreadName != "" {
		v.Set("thread_name", m.ThreadName)
	}
	if m.ThreadID != "" {
		v.Set("thread_id", m.ThreadID)
	}
	return v
}

// ThreadName builds the title of a new forum post: the calendar date of day
// followed by the subject, e.g. "2024-03-15 Nightly build".
func ThreadName(day time.Time, subject string) string {
	if subject == "" {
		subject = DefaultSubject
	}
	return day.Format(time.DateOnly) + " " + subject
}

// Response is the JSON object Discord echoes back for a message sent with
// wait=true.
type Response map[string]any

// ID returns the message id. For the first message of a forum post this is
// also the id of the new thread.
func (r Response) ID() (string, bool) {
	switch id := r["id"].(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	case float64:
		return fmt.Sprintf("%.0f", id), true
	default:
		return "", false
	}
}
