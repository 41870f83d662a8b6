// Package commands defines the bot's built-in prefix commands. Everything is
// registered explicitly by RegisterAll.
package commands

import (
	"context"
	"time"

	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/cooldown"
	"github.com/keshon/sentinel/internal/history"
	"github.com/keshon/sentinel/internal/permission"
	"github.com/keshon/sentinel/pkg/jobmgr"
)

// Guild performs moderation actions on the chat platform.
type Guild interface {
	Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	BulkDelete(ctx context.Context, channelID string, count int) (int, error)
	PruneCount(ctx context.Context, guildID string, days int) (int, error)
	Prune(ctx context.Context, guildID string, days int) (int, error)
	CreateRole(ctx context.Context, guildID, name string, color int) (command.Role, error)
	AssignRole(ctx context.Context, guildID, userID, roleID string) error
	UserVoiceChannel(ctx context.Context, guildID, userID string) (string, error)
}

// Deps are the services commands use. Collaborators may be nil, in which
// case their commands answer that the feature is unavailable.
type Deps struct {
	Prefix    string
	Version   string
	Started   time.Time
	Evaluator *permission.Evaluator
	Cooldowns *cooldown.Store
	History   *history.Store
	Guild     Guild
	Chat      collab.ChatBackend
	Stats     collab.StatsProvider
	Voice     collab.VoiceBackend
	Market    collab.MarketDataProvider
	Jobs      *jobmgr.Manager
	Latency   func() time.Duration
}

// RegisterAll adds every built-in command to reg.
func RegisterAll(reg *command.Registry, d *Deps) {
	if d.Prefix == "" {
		d.Prefix = "!"
	}
	if d.Started.IsZero() {
		d.Started = time.Now()
	}
	registerInformation(reg, d)
	registerModeration(reg, d)
	registerRoles(reg, d)
	registerChat(reg, d)
	registerStats(reg, d)
	registerVoice(reg, d)
	registerMarket(reg, d)
	registerMaintenance(reg, d)
}

// confirmed reports whether the optional confirmation token was given.
func confirmed(args command.Args) bool {
	return args.String("confirm") == "--confirm"
}

func confirmToken(v any) error {
	if s, _ := v.(string); s != "--confirm" {
		return errNotConfirm
	}
	return nil
}
