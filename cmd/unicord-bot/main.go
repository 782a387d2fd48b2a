// ABOUTME: Entry point for the unicord-bot example bot.
// ABOUTME: Wires config, logging, and a handful of demo handlers onto a client.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/unicord/unicord"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/gateway"
)

// version is overridden at build time via -ldflags.
var version = "dev"

const banner = `
             _                   _
 _   _ _ __ (_) ___ ___  _ __ __| |
| | | | '_ \| |/ __/ _ \| '__/ _' |
| |_| | | | | | (_| (_) | | | (_| |
 \__,_|_| |_|_|\___\___/|_|  \__,_|
`

// getConfigPath returns the path to the bot config file.
// Priority: UNICORD_CONFIG env var > XDG_CONFIG_HOME/unicord/bot.yaml > ~/.config/unicord/bot.yaml
func getConfigPath() string {
	if envPath := os.Getenv("UNICORD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bot.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "unicord", "bot.yaml")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	fmt.Printf("  unicord-bot %s\n\n", version)
	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Prefix: %s\n", cfg.Bot.Prefix)

	client, err := unicord.New(unicord.Config{
		Token:         cfg.Bot.Token,
		ApplicationID: cfg.Bot.ApplicationID,
		Prefix:        cfg.Bot.Prefix,
		Intents:       parseIntents(cfg.Bot.Intents, logger),
		Logger:        logger,
		NotFound: func(ctx context.Context, dctx *unicord.Context, command string) {
			_, _ = dctx.ReplyText(ctx, fmt.Sprintf("Unknown command: %s", command))
		},
	})
	if err != nil {
		return err
	}

	if err := registerHandlers(client); err != nil {
		return err
	}

	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	logger.Info("bot started", "state", client.State().String())

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func registerHandlers(client *unicord.Client) error {
	if err := client.Command("ping", unicord.Func(func(ctx context.Context, dctx *unicord.Context, args *unicord.Args) error {
		_, err := dctx.ReplyText(ctx, "pong")
		return err
	})); err != nil {
		return err
	}

	if err := client.Command("say", unicord.Func(func(ctx context.Context, dctx *unicord.Context, args *unicord.Args) error {
		if len(args.Positional) == 0 {
			_, err := dctx.ReplyText(ctx, "nothing to say")
			return err
		}
		_, err := dctx.SendText(ctx, strings.Join(args.Positional, " "))
		return err
	})); err != nil {
		return err
	}

	greet := &unicord.Command{
		Description: "Greet a user in a chosen tone",
		Options: []unicord.Option{
			{
				Name:        "target",
				Description: "Who to greet",
				Type:        unicord.OptionUser,
				Required:    true,
			},
			{
				Name:        "tone",
				Description: "How to greet them",
				Type:        unicord.OptionString,
				Choices: []unicord.Choice{
					{Name: "Friendly", Value: "friendly"},
					{Name: "Formal", Value: "formal"},
				},
			},
		},
		Run: func(ctx context.Context, dctx *unicord.Context, values unicord.Values) error {
			target := values.User("target")
			greeting := "Hello"
			if values.String("tone") == "formal" {
				greeting = "Good day"
			}
			_, err := dctx.ReplyText(ctx, fmt.Sprintf("%s, %s!", greeting, target.Mention()))
			return err
		},
	}
	if err := client.Slash("greet", greet); err != nil {
		return err
	}
	// The same descriptor doubles as a text command; inputs arrive
	// positionally and go through the same validation.
	if err := client.Command("greet", greet); err != nil {
		return err
	}

	if err := client.Component(unicord.Func(func(ctx context.Context, dctx *unicord.Context, args *unicord.Args) error {
		return dctx.Respond(ctx, "Confirmed.")
	}), "confirm-button"); err != nil {
		return err
	}

	if err := client.Command("confirm", unicord.Func(func(ctx context.Context, dctx *unicord.Context, args *unicord.Args) error {
		msg := entity.NewMessage().
			SetContent("Are you sure?").
			AddComponents(entity.Button(1, "Confirm", "confirm-button"))
		_, err := dctx.Send(ctx, msg)
		return err
	})); err != nil {
		return err
	}

	return client.On(unicord.Func(func(ctx context.Context, dctx *unicord.Context, args *unicord.Args) error {
		slog.Debug("guild event", "payload_bytes", len(args.Payload))
		return nil
	}), "GUILD_CREATE")
}

// parseIntents maps config intent names onto gateway flags. Unknown
// names are logged and skipped.
func parseIntents(names []string, logger *slog.Logger) []gateway.Intent {
	known := map[string]gateway.Intent{
		"guilds":          gateway.IntentGuilds,
		"guild_members":   gateway.IntentGuildMembers,
		"guild_messages":  gateway.IntentGuildMessages,
		"direct_messages": gateway.IntentDirectMessages,
		"message_content": gateway.IntentMessageContent,
		"guild_presences": gateway.IntentGuildPresences,
		"all":             gateway.IntentsAll,
	}

	var intents []gateway.Intent
	for _, name := range names {
		in, ok := known[strings.ToLower(name)]
		if !ok {
			logger.Warn("unknown intent in config", "intent", name)
			continue
		}
		intents = append(intents, in)
	}
	return intents
}

func setupLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
