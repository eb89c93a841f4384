// Package bot wraps a Discord gateway session. The platform runs two of
// them: the main community bot and the in-game chat bridge, both managed as
// separate container services over the same type.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Config holds the settings for one Discord session.
type Config struct {
	Token   string `mapstructure:"token" yaml:"token"`
	GuildID string `mapstructure:"guild_id" yaml:"guild_id"`
}

// Bot is one live Discord session.
type Bot struct {
	Session *discordgo.Session

	name string
	log  *slog.Logger
}

// Connect opens a Discord session. The name distinguishes the platform's bot
// instances in logs.
func Connect(ctx context.Context, name string, cfg Config, log *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot %s: token is required", name)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("bot %s: create session: %w", name, err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("discord session ready",
			"bot", name,
			"username", r.User.Username,
			"guilds", len(r.Guilds),
		)
	})

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("bot %s: open session: %w", name, err)
	}

	return &Bot{Session: session, name: name, log: log}, nil
}

// Name returns the instance name the bot was registered under.
func (b *Bot) Name() string {
	return b.name
}

// Shutdown closes the gateway connection.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.log.Info("closing discord session", "bot", b.name)
	return b.Session.Close()
}
