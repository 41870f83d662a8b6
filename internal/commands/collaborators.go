package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/config"
	"github.com/keshon/sentinel/internal/middleware"
)

// slow are the interceptors for commands that wait on a remote service.
func slow() []command.Interceptor {
	return []command.Interceptor{
		middleware.WithErrorContainment(),
		middleware.WithLoadingReaction("⏳"),
		middleware.WithTyping(),
	}
}

func registerChat(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("ask").
		Description("Ask the AI a question.").
		Category(config.CategoryChat).
		Rest("prompt", command.Required()).
		Cooldown(10 * time.Second).
		Use(slow()...).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			var answer string
			err := collab.Guard(ctx, "chat", func(ctx context.Context) error {
				if d.Chat == nil {
					return errNoService
				}
				var err error
				answer, err = d.Chat.Chat(ctx, inv.Args.String("prompt"), collab.ChatContext{
					GuildID:  inv.Caller.GuildID,
					UserID:   inv.Caller.UserID,
					Username: inv.Caller.Username,
					DM:       inv.Message.IsDM(),
				})
				return err
			})
			if err != nil {
				return err
			}
			return inv.Reply(ctx, answer)
		}))
}

func registerStats(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("player").
		Description("Look up World of Tanks player stats.").
		Category(config.CategoryStats).
		Arg("name", command.KindString, command.Required()).
		Cooldown(5 * time.Second).
		Use(slow()...).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			name := inv.Args.String("name")
			var p *collab.Player
			err := collab.Guard(ctx, "player stats", func(ctx context.Context) error {
				if d.Stats == nil {
					return errNoService
				}
				var err error
				p, err = d.Stats.LookupPlayer(ctx, name)
				return err
			})
			if errors.Is(err, collab.ErrNotFound) {
				return inv.Reply(ctx, fmt.Sprintf("No player named `%s`.", name))
			}
			if err != nil {
				return err
			}
			return inv.Reply(ctx, fmt.Sprintf(
				"📊 **%s**\nBattles: %d\nWin rate: %.2f%%\nRating: %d\nLast battle: %s",
				p.Nickname, p.Battles, p.WinRate(), p.Rating, p.LastBattle.Format("2006-01-02")))
		}))

	reg.MustRegister(command.New("clan").
		Description("Look up a World of Tanks clan.").
		Category(config.CategoryStats).
		Rest("query", command.Required()).
		Cooldown(5 * time.Second).
		Use(slow()...).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			query := inv.Args.String("query")
			var c *collab.Clan
			err := collab.Guard(ctx, "clan stats", func(ctx context.Context) error {
				if d.Stats == nil {
					return errNoService
				}
				var err error
				c, err = d.Stats.LookupClan(ctx, query)
				return err
			})
			if errors.Is(err, collab.ErrNotFound) {
				return inv.Reply(ctx, fmt.Sprintf("No clan matching `%s`.", query))
			}
			if err != nil {
				return err
			}
			return inv.Reply(ctx, fmt.Sprintf(
				"🏰 **[%s] %s**\nMembers: %d\nLeader: %s\nCreated: %s",
				c.Tag, c.Name, c.Members, c.Leader, c.Created.Format("2006-01-02")))
		}))
}

func registerVoice(reg *command.Registry, d *Deps) {
	voice := func(ctx context.Context, fn func(ctx context.Context, v collab.VoiceBackend) error) error {
		return collab.Guard(ctx, "voice", func(ctx context.Context) error {
			if d.Voice == nil {
				return errNoService
			}
			return fn(ctx, d.Voice)
		})
	}

	reg.MustRegister(command.New("join").
		Description("Join a voice channel, yours by default.").
		Category(config.CategoryVoice).
		Arg("channel", command.KindChannel).
		Cooldown(5 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			channel := inv.Args.String("channel")
			if channel == "" {
				var err error
				if channel, err = guild(d).UserVoiceChannel(ctx, inv.Caller.GuildID, inv.Caller.UserID); err != nil {
					return fmt.Errorf("find voice channel: %w", err)
				}
			}
			if channel == "" {
				return inv.Reply(ctx, "Join a voice channel first, or name one.")
			}
			if err := voice(ctx, func(ctx context.Context, v collab.VoiceBackend) error {
				return v.Join(ctx, inv.Caller.GuildID, channel)
			}); err != nil {
				return err
			}
			return inv.Reply(ctx, fmt.Sprintf("🔊 Joined <#%s>.", channel))
		}))

	reg.MustRegister(command.New("leave").
		Description("Leave the voice channel.").
		Category(config.CategoryVoice).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			if err := voice(ctx, func(ctx context.Context, v collab.VoiceBackend) error {
				return v.Leave(ctx, inv.Caller.GuildID)
			}); err != nil {
				return err
			}
			return inv.Reply(ctx, "👋 Left the voice channel.")
		}))

	reg.MustRegister(command.New("say").
		Description("Speak text in the voice channel.").
		Category(config.CategoryVoice).
		Aliases("tts").
		Rest("text", command.Required()).
		Cooldown(5 * time.Second).
		Use(append([]command.Interceptor{middleware.WithGuildOnly()}, slow()...)...).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			if err := voice(ctx, func(ctx context.Context, v collab.VoiceBackend) error {
				return v.Speak(ctx, inv.Caller.GuildID, inv.Args.String("text"), "")
			}); err != nil {
				return err
			}
			return inv.Reply(ctx, "🗣️ Done.")
		}))
}

func registerMarket(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("movers").
		Description("Show the top market movers.").
		Category(config.CategoryMarket).
		Arg("exchange", command.KindString).
		Arg("timeframe", command.KindString).
		Arg("limit", command.KindInteger, command.Between(1, 25)).
		Cooldown(15 * time.Second).
		Use(slow()...).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			var movers []collab.Mover
			err := collab.Guard(ctx, "market data", func(ctx context.Context) error {
				if d.Market == nil {
					return errNoService
				}
				var err error
				movers, err = d.Market.Movers(ctx, inv.Args.String("exchange"), inv.Args.String("timeframe"), int(inv.Args.Int("limit", 10)))
				return err
			})
			if err != nil {
				return err
			}
			if len(movers) == 0 {
				return inv.Reply(ctx, "No movers right now.")
			}
			var sb strings.Builder
			sb.WriteString("📈 **Top movers**\n")
			for i, m := range movers {
				fmt.Fprintf(&sb, "%d. `%s` %.4g (%+.2f%%)\n", i+1, m.Symbol, m.Price, m.ChangePct)
			}
			return inv.Reply(ctx, sb.String())
		}))
}
