package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/discord-send/internal/config"
	"github.com/ksyq12/discord-send/internal/errors"
	"github.com/ksyq12/discord-send/internal/logger"
	"github.com/ksyq12/discord-send/internal/webhook"
)

var (
	newMessage   bool
	contextName  string
	subject      string
	webhookURL   string
	listContexts bool
	rmContext    bool
	rmThreadID   bool
	configPath   string
	outputFormat string
	timeout      time.Duration
	jsonOutput   bool
	verbose      bool
	version      = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "discord-send [flags] [message...]",
	Short: "Send messages in threads to Discord forum channels",
	Long: `discord-send posts messages to a Discord forum channel webhook.

The first message of a context opens a new forum post titled with today's
date and the context subject. Later messages are sent as replies into that
post until --new-message starts another one.

Without message arguments the message is read from a pipe on stdin. When
--webhook-url or --subject is given without a message, only the settings
are saved and stdin is left alone; pass "-" to read the message from stdin
in that case.

Contexts bundle a webhook URL, subject and thread and are kept in
$XDG_CONFIG_DIR/discord_message_sender/discord_message_sender.json.

Examples:
  discord-send -u https://discord.com/api/webhooks/... -s "Nightly build" build started
  make 2>&1 | tail -n 20 | discord-send -c ci
  make 2>&1 | tail -n 20 | discord-send -c ci -u https://discord.com/api/webhooks/... -
  discord-send -c ci -n build restarted
  discord-send -l -o yaml
  discord-send -c ci --rm-thread-id
  discord-send -c ci --rm-context`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&newMessage, "new-message", "n", false, "Send the message as a new forum post, not a reply")
	flags.StringVarP(&contextName, "context", "c", config.DefaultContextName, "Context name to use")
	flags.StringVarP(&subject, "subject", "s", "", "Subject used to title new posts (stored on the context)")
	flags.StringVarP(&webhookURL, "webhook-url", "u", "", "Webhook URL to send to (stored on the context)")
	flags.BoolVarP(&listContexts, "list-contexts", "l", false, "List known contexts instead of sending a message")
	flags.BoolVar(&rmContext, "rm-context", false, "Remove the context from the settings")
	flags.BoolVar(&rmThreadID, "rm-thread-id", false, "Remove the thread_id from the context")
	flags.StringVar(&configPath, "config", "", "Path of the contexts file")
	flags.StringVarP(&outputFormat, "output", "o", "table", "Listing format: table, json or yaml")
	flags.DurationVar(&timeout, "timeout", webhook.DefaultTimeout, "Timeout of the webhook request")
	rootCmd.MarkFlagsMutuallyExclusive("list-contexts", "rm-context", "rm-thread-id")

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}

func runRoot(cmd *cobra.Command, args []string) (err error) {
	mode, err := selectMode(listContexts, rmContext, rmThreadID)
	if err != nil {
		return err
	}
	logger.Debug("running in %s mode with context %q", mode, contextName)

	if mode != ModeSend && len(args) > 0 {
		logger.Warn("ignoring message arguments in %s mode", mode)
	}

	format, err := listingFormat()
	if err != nil {
		return err
	}

	path := resolveConfigPath()
	logger.Debug("using contexts file %s", path)

	store, err := deps.StoreOpener.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			} else {
				logger.Error("failed to save contexts: %v", closeErr)
			}
		}
	}()

	overridden := false
	if mode != ModeRemoveContext {
		overridden = applyOverrides(store)
	}

	switch mode {
	case ModeListContexts:
		return runListContexts(store, format)
	case ModeRemoveContext:
		return runRemoveContext(store)
	case ModeRemoveThreadID:
		return runRemoveThreadID(store)
	default:
		return runSend(commandContext(cmd), store, args, overridden)
	}
}

// applyOverrides stores --webhook-url and --subject on the selected context
// and reports whether either was given.
func applyOverrides(store ContextStore) bool {
	if webhookURL == "" && subject == "" {
		store.GetOrCreate(contextName)
		return false
	}
	store.Update(contextName, func(c *config.Context) {
		if webhookURL != "" {
			c.WebhookURL = webhookURL
		}
		if subject != "" {
			c.Subject = subject
		}
	})
	logger.Info("updated context %q from flags", contextName)
	return true
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath(deps.Getenv)
}

func listingFormat() (string, error) {
	if jsonOutput {
		return "json", nil
	}
	format := strings.ToLower(outputFormat)
	switch format {
	case "", "table":
		return "table", nil
	case "json", "yaml":
		return format, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unsupported output format %q (use table, json or yaml)", outputFormat))
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
