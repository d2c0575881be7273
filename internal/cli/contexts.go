package cli

import (
	"github.com/ksyq12/discord-send/internal/output"
)

// runListContexts prints every context under its key. JSON and YAML are
// emitted as a mapping from key to settings.
func runListContexts(store ContextStore, format string) error {
	contexts := store.Snapshot()

	switch format {
	case "json":
		return output.JSON(contexts)
	case "yaml":
		return output.YAML(contexts)
	}

	if len(contexts) == 0 {
		output.Info("There are no contexts yet.")
		return nil
	}

	headers := []string{"NAME", "WEBHOOK URL", "THREAD ID", "SUBJECT"}
	rows := make([][]string, 0, len(contexts))
	for _, name := range store.Names() {
		c := contexts[name]
		rows = append(rows, []string{
			name,
			c.WebhookURL,
			c.ThreadID,
			c.Subject,
		})
	}
	output.Table(headers, rows)
	return nil
}

func runRemoveContext(store ContextStore) error {
	if !store.Delete(contextName) {
		output.Warn("Context %q was not found.", contextName)
		return nil
	}
	if jsonOutput {
		return output.JSON(map[string]any{"context": contextName, "removed": true})
	}
	output.Success("Deleted context %q", contextName)
	return nil
}

func runRemoveThreadID(store ContextStore) error {
	store.ClearThread(contextName)
	if jsonOutput {
		return output.JSON(map[string]any{"context": contextName, "thread_id": ""})
	}
	output.Success("Cleared the thread_id from context %q", contextName)
	return nil
}
