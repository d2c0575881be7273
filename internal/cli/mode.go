package cli

import (
	"github.com/ksyq12/discord-send/internal/errors"
)

// Mode is what a single invocation does.
type Mode int

const (
	ModeSend Mode = iota
	ModeListContexts
	ModeRemoveContext
	ModeRemoveThreadID
)

func (m Mode) String() string {
	switch m {
	case ModeSend:
		return "send"
	case ModeListContexts:
		return "list-contexts"
	case ModeRemoveContext:
		return "rm-context"
	case ModeRemoveThreadID:
		return "rm-thread-id"
	default:
		return "unknown"
	}
}

// selectMode picks the mode from the mode flags. Sending is the default;
// at most one of the other modes may be requested.
func selectMode(list, removeContext, removeThreadID bool) (Mode, error) {
	mode := ModeSend
	selected := 0
	if list {
		mode = ModeListContexts
		selected++
	}
	if removeContext {
		mode = ModeRemoveContext
		selected++
	}
	if removeThreadID {
		mode = ModeRemoveThreadID
		selected++
	}
	if selected > 1 {
		return ModeSend, errors.Validation("--list-contexts, --rm-context and --rm-thread-id cannot be combined")
	}
	return mode, nil
}
