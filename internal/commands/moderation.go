package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/config"
	"github.com/keshon/sentinel/internal/middleware"
)

const (
	defaultTimeout = 10 * time.Minute
	maxTimeout     = 28 * 24 * time.Hour
	nukeRounds     = 10
)

func registerModeration(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("ban").
		Description("Ban a member from the server.").
		Category(config.CategoryModeration).
		Arg("user", command.KindUser, command.Required(), command.Describe("member to ban")).
		Rest("reason", command.Describe("shown in the audit log")).
		Cooldown(5 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			target := inv.Args.String("user")
			if target == inv.Caller.UserID {
				return inv.Reply(ctx, "You can't ban yourself.")
			}
			if err := guild(d).Ban(ctx, inv.Caller.GuildID, target, auditReason(inv), 0); err != nil {
				return fmt.Errorf("ban %s: %w", target, err)
			}
			return inv.Reply(ctx, fmt.Sprintf("🔨 <@%s> has been banned.%s", target, reasonSuffix(inv)))
		}))

	reg.MustRegister(command.New("kick").
		Description("Kick a member from the server.").
		Category(config.CategoryModeration).
		Arg("user", command.KindUser, command.Required(), command.Describe("member to kick")).
		Rest("reason", command.Describe("shown in the audit log")).
		Cooldown(5 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			target := inv.Args.String("user")
			if target == inv.Caller.UserID {
				return inv.Reply(ctx, "You can't kick yourself.")
			}
			if err := guild(d).Kick(ctx, inv.Caller.GuildID, target, auditReason(inv)); err != nil {
				return fmt.Errorf("kick %s: %w", target, err)
			}
			return inv.Reply(ctx, fmt.Sprintf("👢 <@%s> has been kicked.%s", target, reasonSuffix(inv)))
		}))

	reg.MustRegister(command.New("timeout").
		Description("Temporarily mute a member.").
		Category(config.CategoryModeration).
		Aliases("mute").
		Arg("user", command.KindUser, command.Required(), command.Describe("member to time out")).
		Arg("seconds", command.KindInteger, command.Between(1, int64(maxTimeout/time.Second)), command.Describe("duration, default 600")).
		Rest("reason", command.Describe("shown in the audit log")).
		Cooldown(5 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			target := inv.Args.String("user")
			dur := time.Duration(inv.Args.Int("seconds", int64(defaultTimeout/time.Second))) * time.Second
			if err := guild(d).Timeout(ctx, inv.Caller.GuildID, target, time.Now().Add(dur), auditReason(inv)); err != nil {
				return fmt.Errorf("timeout %s: %w", target, err)
			}
			return inv.Reply(ctx, fmt.Sprintf("🔇 <@%s> is timed out for %s.%s", target, dur, reasonSuffix(inv)))
		}))

	reg.MustRegister(command.New("bulkdelete").
		Description("Delete recent messages in this channel.").
		Category(config.CategoryCleanup).
		Aliases("purge", "clear").
		Arg("count", command.KindInteger, command.Required(), command.Between(1, 100), command.Describe("1 to 100 messages")).
		Cooldown(10 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			n, err := guild(d).BulkDelete(ctx, inv.Caller.ChannelID, int(inv.Args.Int("count", 0)))
			if err != nil {
				return fmt.Errorf("bulk delete: %w", err)
			}
			return inv.Reply(ctx, fmt.Sprintf("🧹 Deleted %d messages.", n))
		}))

	reg.MustRegister(command.New("prune").
		Description("Remove members inactive for a number of days.").
		Category(config.CategoryModeration).
		Arg("days", command.KindInteger, command.Required(), command.Between(1, 30), command.Describe("1 to 30 days")).
		Arg("confirm", command.KindString, command.Check(confirmToken), command.Describe("`--confirm` to actually prune")).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			days := int(inv.Args.Int("days", 0))
			g := guild(d)
			if !confirmed(inv.Args) {
				n, err := g.PruneCount(ctx, inv.Caller.GuildID, days)
				if err != nil {
					return fmt.Errorf("prune count: %w", err)
				}
				return inv.Reply(ctx, fmt.Sprintf(
					"⚠️ Pruning would remove **%d** members inactive for %d days.\nRun `%sprune %d --confirm` to proceed.",
					n, days, d.Prefix, days))
			}
			n, err := g.Prune(ctx, inv.Caller.GuildID, days)
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			return inv.Reply(ctx, fmt.Sprintf("✂️ Pruned **%d** members inactive for %d days.", n, days))
		}))

	reg.MustRegister(command.New("nuke").
		Description("Wipe the recent history of this channel.").
		Category(config.CategoryCleanup).
		Arg("confirm", command.KindString, command.Check(confirmToken)).
		Cooldown(time.Minute).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			if !confirmed(inv.Args) {
				return inv.Reply(ctx, fmt.Sprintf("☢️ This deletes up to %d messages in this channel. Run `%snuke --confirm` to proceed.", nukeRounds*100, d.Prefix))
			}
			total := 0
			for i := 0; i < nukeRounds; i++ {
				n, err := guild(d).BulkDelete(ctx, inv.Caller.ChannelID, 100)
				total += n
				if err != nil {
					return fmt.Errorf("nuke after %d messages: %w", total, err)
				}
				if n < 100 {
					break
				}
			}
			return inv.Reply(ctx, fmt.Sprintf("☢️ Deleted %d messages.", total))
		}))
}

func guild(d *Deps) Guild {
	if d.Guild == nil {
		return noGuild{}
	}
	return d.Guild
}

func auditReason(inv *command.Invocation) string {
	r := inv.Args.String("reason")
	if r == "" {
		r = "no reason given"
	}
	return fmt.Sprintf("%s (by %s)", r, inv.Caller.Username)
}

func reasonSuffix(inv *command.Invocation) string {
	if r := inv.Args.String("reason"); r != "" {
		return " Reason: " + r
	}
	return ""
}

type noGuild struct{}

func (noGuild) Ban(context.Context, string, string, string, int) error { return errNoGuild }
func (noGuild) Kick(context.Context, string, string, string) error     { return errNoGuild }
func (noGuild) Timeout(context.Context, string, string, time.Time, string) error {
	return errNoGuild
}
func (noGuild) BulkDelete(context.Context, string, int) (int, error) { return 0, errNoGuild }
func (noGuild) PruneCount(context.Context, string, int) (int, error) { return 0, errNoGuild }
func (noGuild) Prune(context.Context, string, int) (int, error)      { return 0, errNoGuild }
func (noGuild) CreateRole(context.Context, string, string, int) (command.Role, error) {
	return command.Role{}, errNoGuild
}
func (noGuild) AssignRole(context.Context, string, string, string) error { return errNoGuild }
func (noGuild) UserVoiceChannel(context.Context, string, string) (string, error) {
	return "", errNoGuild
}
