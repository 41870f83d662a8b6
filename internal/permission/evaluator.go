// Package permission decides whether a caller may run a command. Rule sets
// are checked in a fixed order and the first set containing the command
// decides.
package permission

import (
	"fmt"
	"strings"

	"github.com/keshon/sentinel/internal/command"
)

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Tier    Tier
	Reason  string
}

// Err returns the denial as an error, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &command.PermissionError{Tier: d.Tier.String(), Reason: d.Reason}
}

type rule struct {
	tier    Tier
	matches func(name string, required []command.Capability) bool
	allow   func(c *command.Caller, name string, required []command.Capability) (bool, string)
}

// Evaluator applies a Policy.
type Evaluator struct {
	policy *Policy
	rules  []rule
}

func NewEvaluator(p *Policy) *Evaluator {
	e := &Evaluator{policy: p}
	e.rules = []rule{
		{TierDisabled, inSet(p.Disabled), func(c *command.Caller, _ string, _ []command.Capability) (bool, string) {
			return c.IsBotOwner, "This command is disabled for security reasons."
		}},
		{TierOwner, inSet(p.OwnerOnly), func(c *command.Caller, _ string, _ []command.Capability) (bool, string) {
			return c.IsBotOwner, "Only the bot owner can use this command."
		}},
		{TierAdmin, inSet(p.Admin), requireAdmin("You need the `Administrator` permission to use this command.")},
		{TierModerator, inSet(p.Moderator), e.allowModerator},
		{TierRoleName, inSet(p.RoleName), e.allowLeadership},
		{TierCapabilities, e.hasCapabilities, e.allowCapabilities},
		{TierLegacyAdmin, inSet(p.LegacyAdmin), requireAdmin("This command is restricted to server administrators.")},
	}
	return e
}

// Evaluate decides whether caller may run the named command. required lists
// capabilities declared on the command itself; they apply when the policy has
// no explicit capability entry for the name.
func (e *Evaluator) Evaluate(caller *command.Caller, name string, required ...command.Capability) Decision {
	name = strings.ToLower(name)
	for _, r := range e.rules {
		if !r.matches(name, required) {
			continue
		}
		ok, reason := r.allow(caller, name, required)
		if ok {
			return Decision{Allowed: true, Tier: r.tier}
		}
		return Decision{Tier: r.tier, Reason: reason}
	}
	return Decision{Allowed: true, Tier: TierPublic}
}

// Allowed is a shorthand for Evaluate(...).Allowed.
func (e *Evaluator) Allowed(caller *command.Caller, spec *command.Spec) bool {
	return e.Evaluate(caller, spec.Name, spec.Capabilities...).Allowed
}

func inSet(set map[string]bool) func(string, []command.Capability) bool {
	return func(name string, _ []command.Capability) bool { return set[name] }
}

func requireAdmin(reason string) func(*command.Caller, string, []command.Capability) (bool, string) {
	return func(c *command.Caller, _ string, _ []command.Capability) (bool, string) {
		return c.IsBotOwner || c.Permissions.Has(command.CapAdministrator), reason
	}
}

func (e *Evaluator) allowModerator(c *command.Caller, _ string, _ []command.Capability) (bool, string) {
	if c.IsBotOwner || c.Permissions.HasAny(ModeratorCapabilities...) {
		return true, ""
	}
	return false, fmt.Sprintf("You need moderator permissions to use this command (one of %s).", capabilityList(ModeratorCapabilities))
}

func (e *Evaluator) allowLeadership(c *command.Caller, _ string, _ []command.Capability) (bool, string) {
	if c.IsBotOwner || c.IsGuildOwner || c.HasRoleLike(e.policy.LeadershipRoles) {
		return true, ""
	}
	return false, "You need a leadership role to use this command."
}

func (e *Evaluator) capabilitiesFor(name string, required []command.Capability) []command.Capability {
	if caps, ok := e.policy.Capabilities[name]; ok {
		return caps
	}
	return required
}

func (e *Evaluator) hasCapabilities(name string, required []command.Capability) bool {
	return len(e.capabilitiesFor(name, required)) > 0
}

func (e *Evaluator) allowCapabilities(c *command.Caller, name string, required []command.Capability) (bool, string) {
	if c.IsBotOwner {
		return true, ""
	}
	caps := e.capabilitiesFor(name, required)
	var missing []command.Capability
	for _, cp := range caps {
		if !c.Permissions.Has(cp) {
			missing = append(missing, cp)
		}
	}
	if len(missing) == 0 {
		return true, ""
	}
	return false, fmt.Sprintf("You are missing the following permissions: %s", capabilityList(missing))
}
