package cli

import (
	"context"
	"strings"

	"github.com/ksyq12/discord-send/internal/errors"
	"github.com/ksyq12/discord-send/internal/logger"
	"github.com/ksyq12/discord-send/internal/output"
	"github.com/ksyq12/discord-send/internal/webhook"
)

type sendResult struct {
	Context  string           `json:"context"`
	ThreadID string           `json:"thread_id"`
	NewPost  bool             `json:"new_post"`
	Response webhook.Response `json:"response"`
}

func runSend(ctx context.Context, store ContextStore, args []string, overridden bool) error {
	content, err := messageContent(args, overridden)
	if err != nil {
		return err
	}
	if content == "" {
		if overridden {
			// Only settings were given; keep them without sending.
			output.Info("Updated context %q", contextName)
			return nil
		}
		return errors.ErrEmptyMessage
	}

	before := store.GetOrCreate(contextName)
	newPost := newMessage || !before.HasThread()

	resp, err := deps.Sender.SendNamed(ctx, store, contextName, webhook.Message{Content: content}, newMessage)
	if err != nil {
		return errors.WithContext(err, contextName)
	}
	updated, _ := store.Get(contextName)
	logger.InfoFields("message sent", map[string]any{
		"context":   contextName,
		"thread_id": updated.ThreadID,
		"new_post":  newPost,
	})

	if jsonOutput {
		return output.JSON(sendResult{
			Context:  contextName,
			ThreadID: updated.ThreadID,
			NewPost:  newPost,
			Response: resp,
		})
	}
	if newPost {
		output.Success("Posted new thread %s in context %q", updated.ThreadID, contextName)
	} else {
		output.Success("Replied to thread %s in context %q", updated.ThreadID, contextName)
	}
	return nil
}

// stdinArg as the only argument reads the message from stdin.
const stdinArg = "-"

// messageContent joins the positional arguments. Without arguments it reads
// piped stdin, unless settings were given on the command line: such a call
// only updates the context and must not wait on an open stdin.
func messageContent(args []string, overridden bool) (string, error) {
	switch {
	case len(args) == 1 && args[0] == stdinArg:
		if deps.Stdin == nil {
			return "", nil
		}
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case overridden:
		logger.Debug("settings given without a message, not reading stdin")
		return "", nil
	case deps.Stdin == nil || deps.Stdin.IsTerminal():
		return "", nil
	}

	logger.Debug("reading message from stdin")
	content, err := deps.Stdin.ReadMessage()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeValidation, "reading message from stdin", err)
	}
	return content, nil
}
