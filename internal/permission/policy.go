package permission

import (
	"strings"

	"github.com/keshon/sentinel/internal/command"
)

// Tier identifies which rule set decided a permission check.
type Tier int

const (
	TierPublic Tier = iota
	TierDisabled
	TierOwner
	TierAdmin
	TierModerator
	TierRoleName
	TierCapabilities
	TierLegacyAdmin
)

func (t Tier) String() string {
	switch t {
	case TierDisabled:
		return "disabled"
	case TierOwner:
		return "owner"
	case TierAdmin:
		return "admin"
	case TierModerator:
		return "moderator"
	case TierRoleName:
		return "role"
	case TierCapabilities:
		return "capabilities"
	case TierLegacyAdmin:
		return "legacy-admin"
	default:
		return "public"
	}
}

// ModeratorCapabilities are the flags of which a moderator needs at least one.
var ModeratorCapabilities = []command.Capability{
	command.CapKickMembers,
	command.CapBanMembers,
	command.CapManageMessages,
	command.CapModerateMembers,
}

// Policy is the static set of tiered command rules. Sets may overlap; the
// evaluator resolves overlaps by tier order.
type Policy struct {
	Disabled     map[string]bool
	OwnerOnly    map[string]bool
	Admin        map[string]bool
	Moderator    map[string]bool
	RoleName     map[string]bool
	Capabilities map[string][]command.Capability
	LegacyAdmin  map[string]bool

	// LeadershipRoles are role-name fragments accepted by the role-name tier.
	LeadershipRoles []string
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{
		Disabled:     map[string]bool{},
		OwnerOnly:    map[string]bool{},
		Admin:        map[string]bool{},
		Moderator:    map[string]bool{},
		RoleName:     map[string]bool{},
		Capabilities: map[string][]command.Capability{},
		LegacyAdmin:  map[string]bool{},
	}
}

// DefaultPolicy returns the built-in rule sets of the bot.
func DefaultPolicy(leadership []string) *Policy {
	p := NewPolicy()
	add(p.Disabled, "nuke")
	add(p.OwnerOnly, "status")
	add(p.Admin, "prune", "history")
	add(p.Moderator, "ban", "kick", "timeout", "bulkdelete")
	add(p.RoleName, "giverole")
	p.Capabilities["createrole"] = []command.Capability{command.CapManageRoles}
	p.Capabilities["join"] = []command.Capability{command.CapVoiceConnect}
	p.Capabilities["leave"] = []command.Capability{command.CapVoiceConnect}
	add(p.LegacyAdmin, "announce", "echo")
	p.LeadershipRoles = leadership
	return p
}

// Disable adds names to the disabled-by-default set.
func (p *Policy) Disable(names ...string) {
	add(p.Disabled, names...)
}

func add(set map[string]bool, names ...string) {
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			set[n] = true
		}
	}
}
