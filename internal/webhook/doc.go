// Package webhook posts messages to Discord forum-channel webhooks.
//
// Every message either opens a new forum post or replies into an existing
// one. Which one is decided from the context the message is sent with:
//
//	Unthreaded --(successful send)--> Threaded
//	Threaded   --(forceNew or ClearThread)--> Unthreaded
//
// A new post is titled "<date> <subject>", where the subject defaults to
// "Potato". The id Discord returns for that first message is the id of the
// thread, and it is recorded on the context so that later sends reply into
// the same post.
//
// Requests are sent with wait=true so Discord answers with the created
// message as JSON. Any other answer is reported as an errors.ErrBadResponse:
// a non-2xx status, or a body that is not application/json, which usually
// means the webhook URL points somewhere else.
package webhook
