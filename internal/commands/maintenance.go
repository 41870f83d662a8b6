package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/config"
	"github.com/keshon/sentinel/internal/middleware"
)

func registerMaintenance(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("history").
		Description("Show recent commands used in this server.").
		Category(config.CategoryMaintenance).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			if d.History == nil {
				return inv.Reply(ctx, "History is not recorded.")
			}
			records := d.History.Recent(inv.Caller.GuildID, 10)
			if len(records) == 0 {
				return inv.Reply(ctx, "No commands recorded yet.")
			}
			var sb strings.Builder
			sb.WriteString("🗒️ **Recent commands**\n")
			for _, r := range records {
				mark := ""
				if r.Failed {
					mark = " ❌"
				}
				fmt.Fprintf(&sb, "`%s` %s `%s%s` in <#%s>%s\n",
					r.Datetime.Format("01-02 15:04"), r.Username, d.Prefix, r.Command, r.ChannelID, mark)
			}
			return inv.Reply(ctx, sb.String())
		}))

	reg.MustRegister(command.New("status").
		Description("Show bot internals.").
		Category(config.CategoryMaintenance).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			var cooldowns, guilds int
			if d.Cooldowns != nil {
				cooldowns = d.Cooldowns.Len()
			}
			if d.History != nil {
				guilds = d.History.Guilds()
			}
			text := fmt.Sprintf(
				"🛠️ Uptime: %s\nCommands: %d\nCooldown entries: %d\nGuilds with history: %d",
				uptime(time.Since(d.Started)), reg.Len(), cooldowns, guilds)
			if d.Jobs != nil {
				text += "\n" + d.Jobs.Status()
			}
			return inv.Reply(ctx, text)
		}))

	reg.MustRegister(command.New("echo").
		Description("Repeat text as the bot.").
		Category(config.CategoryMaintenance).
		Rest("text", command.Required()).
		Use(middleware.WithCleanup(0)).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			return inv.Reply(ctx, inv.Args.String("text"))
		}))

	reg.MustRegister(command.New("announce").
		Description("Post an announcement.").
		Category(config.CategoryMaintenance).
		Rest("text", command.Required()).
		Use(middleware.WithGuildOnly(), middleware.WithCleanup(0)).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			return inv.Reply(ctx, "📢 **Announcement**\n"+inv.Args.String("text"))
		}))
}
