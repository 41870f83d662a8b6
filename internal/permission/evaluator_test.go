package permission

import (
	"errors"
	"strings"
	"testing"

	"github.com/keshon/sentinel/internal/command"
)

func caller(perms command.Capability, roles ...string) *command.Caller {
	c := &command.Caller{UserID: "u1", GuildID: "g1", Permissions: perms}
	for i, r := range roles {
		c.Roles = append(c.Roles, command.Role{ID: string(rune('a' + i)), Name: r})
	}
	return c
}

func owner() *command.Caller {
	c := caller(0)
	c.IsBotOwner = true
	return c
}

func TestEvaluateTiers(t *testing.T) {
	e := NewEvaluator(DefaultPolicy([]string{"leader", "officer"}))

	guildOwner := caller(0)
	guildOwner.IsGuildOwner = true

	tests := []struct {
		name    string
		caller  *command.Caller
		command string
		allowed bool
		tier    Tier
	}{
		{"disabled denies admin", caller(command.CapAdministrator), "nuke", false, TierDisabled},
		{"disabled allows owner", owner(), "nuke", true, TierDisabled},
		{"owner-only denies admin", caller(command.CapAdministrator), "status", false, TierOwner},
		{"owner-only allows owner", owner(), "status", true, TierOwner},
		{"admin tier allows admin", caller(command.CapAdministrator), "prune", true, TierAdmin},
		{"admin tier denies moderator", caller(command.CapBanMembers), "prune", false, TierAdmin},
		{"moderator any-of kick", caller(command.CapKickMembers), "ban", true, TierModerator},
		{"moderator any-of manage messages", caller(command.CapManageMessages), "timeout", true, TierModerator},
		{"moderator denies plain member", caller(command.CapSendMessages), "ban", false, TierModerator},
		{"role tier leadership fragment", caller(0, "Clan Officer"), "giverole", true, TierRoleName},
		{"role tier guild owner", guildOwner, "giverole", true, TierRoleName},
		{"role tier denies admin without role", caller(command.CapAdministrator, "member"), "giverole", false, TierRoleName},
		{"capabilities all held", caller(command.CapManageRoles), "createrole", true, TierCapabilities},
		{"capabilities missing", caller(command.CapKickMembers), "createrole", false, TierCapabilities},
		{"legacy admin denies", caller(command.CapManageGuild), "announce", false, TierLegacyAdmin},
		{"legacy admin allows admin", caller(command.CapAdministrator), "echo", true, TierLegacyAdmin},
		{"public", caller(0), "ping", true, TierPublic},
		{"case-insensitive name", caller(0), "NUKE", false, TierDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(tt.caller, tt.command)
			if d.Allowed != tt.allowed || d.Tier != tt.tier {
				t.Fatalf("got allowed=%v tier=%s, want allowed=%v tier=%s", d.Allowed, d.Tier, tt.allowed, tt.tier)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatal("denial without reason")
			}
		})
	}
}

func TestOwnerTierBeatsAdminTier(t *testing.T) {
	p := NewPolicy()
	p.OwnerOnly["overlap"] = true
	p.Admin["overlap"] = true
	e := NewEvaluator(p)

	d := e.Evaluate(caller(command.CapAdministrator), "overlap")
	if d.Allowed || d.Tier != TierOwner {
		t.Fatalf("admin non-owner got allowed=%v tier=%s, want owner-tier denial", d.Allowed, d.Tier)
	}
}

func TestDisabledBeatsEverything(t *testing.T) {
	p := DefaultPolicy(nil)
	p.Disable("ban")
	e := NewEvaluator(p)

	d := e.Evaluate(caller(command.CapBanMembers), "ban")
	if d.Allowed || d.Tier != TierDisabled {
		t.Fatalf("got %+v", d)
	}
}

func TestDeclaredCapabilitiesAreAllRequired(t *testing.T) {
	e := NewEvaluator(NewPolicy())
	need := []command.Capability{command.CapManageRoles, command.CapManageChannels}

	if e.Evaluate(caller(command.CapManageRoles), "custom", need...).Allowed {
		t.Fatal("one of two capabilities should not be enough")
	}
	if !e.Evaluate(caller(command.CapManageRoles|command.CapManageChannels), "custom", need...).Allowed {
		t.Fatal("both capabilities should be enough")
	}
	if !e.Evaluate(owner(), "custom", need...).Allowed {
		t.Fatal("owner should bypass")
	}
}

func TestDenyReasonsAreDistinct(t *testing.T) {
	e := NewEvaluator(DefaultPolicy([]string{"leader"}))
	c := caller(0)
	seen := map[string]string{}
	for _, name := range []string{"nuke", "status", "prune", "ban", "giverole", "createrole", "announce"} {
		d := e.Evaluate(c, name)
		if d.Allowed {
			t.Fatalf("%s unexpectedly allowed", name)
		}
		if prev, ok := seen[d.Reason]; ok {
			t.Fatalf("%s and %s share reason %q", prev, name, d.Reason)
		}
		seen[d.Reason] = name
	}
}

func TestDecisionErr(t *testing.T) {
	e := NewEvaluator(DefaultPolicy(nil))
	err := e.Evaluate(caller(command.CapSendMessages), "ban").Err()

	var pe *command.PermissionError
	if !errors.As(err, &pe) || pe.Tier != "moderator" {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(pe.Reason, "Ban Members") {
		t.Fatalf("reason should name moderator capabilities: %q", pe.Reason)
	}
}
