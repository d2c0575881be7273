package config

import "path/filepath"

const (
	appDir   = "discord_message_sender"
	fileName = "discord_message_sender.json"
)

// DefaultPath returns the location of the contexts file:
// $XDG_CONFIG_DIR/discord_message_sender/discord_message_sender.json,
// falling back to $HOME/.config and then ./.config.
func DefaultPath(getenv func(string) string) string {
	dir := getenv("XDG_CONFIG_DIR")
	if dir == "" {
		home := getenv("HOME")
		if home == "" {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appDir, fileName)
}
