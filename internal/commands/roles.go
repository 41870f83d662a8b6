package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/config"
	"github.com/keshon/sentinel/internal/middleware"
)

func registerRoles(reg *command.Registry, d *Deps) {
	reg.MustRegister(command.New("createrole").
		Description("Create a new role.").
		Category(config.CategoryRoles).
		Arg("name", command.KindString, command.Required(), command.Describe("role name, one word")).
		Arg("color", command.KindString, command.Check(checkColor), command.Describe("hex color such as #ff8800")).
		Requires(command.CapManageRoles).
		Cooldown(10 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			color, _ := parseColor(inv.Args.String("color"))
			role, err := guild(d).CreateRole(ctx, inv.Caller.GuildID, inv.Args.String("name"), color)
			if err != nil {
				return fmt.Errorf("create role: %w", err)
			}
			return inv.Reply(ctx, fmt.Sprintf("🎭 Created role <@&%s>.", role.ID))
		}))

	reg.MustRegister(command.New("giverole").
		Description("Give a role to a member.").
		Category(config.CategoryRoles).
		Arg("user", command.KindUser, command.Required()).
		Arg("role", command.KindRole, command.Required()).
		Cooldown(5 * time.Second).
		Use(middleware.WithGuildOnly()).
		Handle(func(ctx context.Context, inv *command.Invocation) error {
			user, role := inv.Args.String("user"), inv.Args.String("role")
			if err := guild(d).AssignRole(ctx, inv.Caller.GuildID, user, role); err != nil {
				return fmt.Errorf("assign role %s: %w", role, err)
			}
			return inv.Reply(ctx, fmt.Sprintf("✅ Gave <@&%s> to <@%s>.", role, user))
		}))
}

func parseColor(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || n > 0xFFFFFF {
		return 0, fmt.Errorf("must be a hex color like #ff8800")
	}
	return int(n), nil
}

func checkColor(v any) error {
	s, _ := v.(string)
	_, err := parseColor(s)
	return err
}
