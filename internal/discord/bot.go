// Package discord connects the dispatcher to a Discord gateway session and
// implements the platform operations commands need.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/sentinel/internal/dispatch"
	"github.com/rs/zerolog"
)

// Bot owns the gateway session.
type Bot struct {
	dg         *discordgo.Session
	dispatcher *dispatch.Dispatcher
	log        zerolog.Logger
	ctx        context.Context
}

// New creates the session without connecting.
func New(token string, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent
	dg.StateEnabled = true

	return &Bot{
		dg:  dg,
		log: log.With().Str("component", "discord").Logger(),
		ctx: context.Background(),
	}, nil
}

// Session exposes the underlying session to the guild and voice adapters.
func (b *Bot) Session() *discordgo.Session { return b.dg }

// Latency is the gateway heartbeat latency.
func (b *Bot) Latency() time.Duration { return b.dg.HeartbeatLatency() }

// Run connects, routes messages to d and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context, d *dispatch.Dispatcher) error {
	b.dispatcher = d
	b.ctx = ctx

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onGuildCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.dispatcher.SetSelfID(r.User.ID)
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	msg := b.snapshot(s, m)
	ch := &Channel{s: s, id: m.ChannelID}
	b.dispatcher.HandleMessage(b.ctx, msg, ch)
}
