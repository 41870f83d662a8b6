package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/config"
)

func registerInformation(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("help").
		Description("Show the commands you can use.").
		Category(config.CategoryInformation).
		Aliases("h", "commands").
		Arg("command", command.KindString, command.Describe("show details for one command")).
		Cooldown(3 * time.Second).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			if inv.Args.Has("command") {
				return inv.Reply(ctx, commandHelp(reg, d, inv))
			}
			return inv.Reply(ctx, helpMessage(reg, d, inv.Caller))
		}))

	reg.MustRegister(command.New("ping").
		Description("Check that the bot is alive.").
		Category(config.CategoryInformation).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			if d.Latency == nil {
				return inv.Reply(ctx, "🏓 Pong!")
			}
			return inv.Reply(ctx, fmt.Sprintf("🏓 Pong! Response time: `%dms`", d.Latency().Milliseconds()))
		}))

	reg.MustRegister(command.New("about").
		Description("Show info about the bot.").
		Category(config.CategoryInformation).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			version := d.Version
			if version == "" {
				version = "dev"
			}
			return inv.Reply(ctx, fmt.Sprintf(
				"🛡️ **Sentinel** `%s`\nA moderation and utility bot. Type `%shelp` to see what you can do.\nUp for %s.",
				version, d.Prefix, uptime(time.Since(d.Started))))
		}))
}

// helpMessage lists, per category, only the commands caller is allowed to run.
func helpMessage(reg *command.Registry, d *Deps, caller *command.Caller) string {
	var sb strings.Builder
	sb.WriteString("📖 **Available commands**\n\n")
	for _, cat := range reg.Categories(config.CategoryWeights) {
		var lines []string
		for _, s := range reg.ByCategory(cat) {
			if d.Evaluator != nil && !d.Evaluator.Allowed(caller, s) {
				continue
			}
			lines = append(lines, fmt.Sprintf("`%s%s` - %s", d.Prefix, s.Name, s.Description))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "**%s**\n%s\n\n", cat, strings.Join(lines, "\n"))
	}
	fmt.Fprintf(&sb, "Use `%shelp <command>` for details.", d.Prefix)
	return sb.String()
}

func commandHelp(reg *command.Registry, d *Deps, inv *command.Invocation) string {
	name := strings.TrimPrefix(inv.Args.String("command"), d.Prefix)
	s, ok := reg.Resolve(name)
	if !ok || (d.Evaluator != nil && !d.Evaluator.Allowed(inv.Caller, s)) {
		return fmt.Sprintf("No command named `%s`.", name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s%s**\n%s\n\nUsage: `%s%s`", d.Prefix, s.Name, s.Description, d.Prefix, s.Usage)
	if len(s.Aliases) > 0 {
		fmt.Fprintf(&sb, "\nAliases: `%s`", strings.Join(s.Aliases, "`, `"))
	}
	for _, a := range s.Args {
		if a.Description != "" {
			fmt.Fprintf(&sb, "\n• `%s` (%s): %s", a.Name, a.Kind, a.Description)
		}
	}
	if s.Cooldown > 0 {
		fmt.Fprintf(&sb, "\nCooldown: %s", s.Cooldown)
	}
	return sb.String()
}

func uptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, d)
	}
	return d.String()
}
