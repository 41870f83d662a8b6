package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/sentinel/internal/command"
)

// Messages older than two weeks cannot be bulk deleted.
const bulkDeleteWindow = 14 * 24 * time.Hour

// Guild implements commands.Guild on a session.
type Guild struct {
	s *discordgo.Session
}

func NewGuild(s *discordgo.Session) *Guild { return &Guild{s: s} }

func (g *Guild) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	return g.s.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, discordgo.WithContext(ctx))
}

func (g *Guild) Kick(ctx context.Context, guildID, userID, reason string) error {
	return g.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (g *Guild) Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return g.s.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// BulkDelete removes up to count recent messages younger than two weeks.
func (g *Guild) BulkDelete(ctx context.Context, channelID string, count int) (int, error) {
	msgs, err := g.s.ChannelMessages(channelID, count, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("list messages: %w", err)
	}

	cutoff := time.Now().Add(-bulkDeleteWindow)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Timestamp.After(cutoff) {
			ids = append(ids, m.ID)
		}
	}
	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		return 1, g.s.ChannelMessageDelete(channelID, ids[0], discordgo.WithContext(ctx))
	}
	if err := g.s.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (g *Guild) PruneCount(ctx context.Context, guildID string, days int) (int, error) {
	n, err := g.s.GuildPruneCount(guildID, uint32(days), discordgo.WithContext(ctx))
	return int(n), err
}

func (g *Guild) Prune(ctx context.Context, guildID string, days int) (int, error) {
	n, err := g.s.GuildPrune(guildID, uint32(days), discordgo.WithContext(ctx))
	return int(n), err
}

func (g *Guild) CreateRole(ctx context.Context, guildID, name string, color int) (command.Role, error) {
	r, err := g.s.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name, Color: &color}, discordgo.WithContext(ctx))
	if err != nil {
		return command.Role{}, err
	}
	return command.Role{ID: r.ID, Name: r.Name}, nil
}

func (g *Guild) AssignRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// UserVoiceChannel returns "" when the user is not in voice.
func (g *Guild) UserVoiceChannel(_ context.Context, guildID, userID string) (string, error) {
	vs, err := g.s.State.VoiceState(guildID, userID)
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return vs.ChannelID, nil
}
