// Package config stores the named contexts used by discord-send.
//
// A context bundles the settings needed to post into one Discord forum
// channel: the webhook URL, the thread currently being replied to, and the
// subject used to title new threads. Contexts live in a single JSON file,
// by default ~/.config/discord_message_sender/discord_message_sender.json:
//
//	{
//	    "default": {
//	        "name": "default",
//	        "webhook_url": "https://discord.com/api/webhooks/123/abc",
//	        "thread_id": "1207631870224134184",
//	        "subject": "Nightly build"
//	    }
//	}
//
// # Lifecycle
//
// A Store is opened once per process and closed once. Open loads the file;
// Close writes the whole mapping back (unless autosave is disabled) and
// releases the lock taken with WithLock. Callers defer Close right after a
// successful Open so that every exit path persists changes:
//
//	store, err := config.Open(path, config.WithLock(true))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	c := store.GetOrCreate("ci")
//	c.Subject = "CI failures"
//	store.Put("ci", c)
//
// # Default Context
//
// The store always starts with a "default" context. Asking for an unknown
// name creates it as a copy of "default"; the two are independent afterwards.
//
// # Thread Safety
//
// Store is NOT safe for concurrent use. The file lock only coordinates
// separate processes.
package config
