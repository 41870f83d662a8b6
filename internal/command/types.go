// Package command holds the command data model: callers and their
// capabilities, command specs built with a fluent builder, the registry that
// resolves names and aliases, and the positional argument parser.
package command

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Capability is a set of platform permission flags. Values are the Discord
// permission bits, so a member's computed permissions convert directly.
type Capability int64

const (
	CapAdministrator    Capability = discordgo.PermissionAdministrator
	CapKickMembers      Capability = discordgo.PermissionKickMembers
	CapBanMembers       Capability = discordgo.PermissionBanMembers
	CapManageMessages   Capability = discordgo.PermissionManageMessages
	CapModerateMembers  Capability = discordgo.PermissionModerateMembers
	CapManageRoles      Capability = discordgo.PermissionManageRoles
	CapManageChannels   Capability = discordgo.PermissionManageChannels
	CapManageGuild      Capability = discordgo.PermissionManageServer
	CapManageNicknames  Capability = discordgo.PermissionManageNicknames
	CapSendMessages     Capability = discordgo.PermissionSendMessages
	CapViewAuditLogs    Capability = discordgo.PermissionViewAuditLogs
	CapVoiceConnect     Capability = discordgo.PermissionVoiceConnect
	CapVoiceMoveMembers Capability = discordgo.PermissionVoiceMoveMembers
)

// Has reports whether every flag in want is present. Administrator implies
// all flags, matching how the platform resolves permissions.
func (c Capability) Has(want Capability) bool {
	if c&CapAdministrator != 0 {
		return true
	}
	return c&want == want
}

// HasAny reports whether at least one of flags is present.
func (c Capability) HasAny(flags ...Capability) bool {
	for _, f := range flags {
		if c.Has(f) {
			return true
		}
	}
	return false
}

type Role struct {
	ID   string
	Name string
}

// Message is the platform-neutral snapshot of one inbound chat message.
type Message struct {
	ID          string
	Content     string
	ChannelID   string
	GuildID     string // empty for direct messages
	AuthorID    string
	AuthorName  string
	AuthorIsBot bool
	MentionsBot bool

	// Member snapshot at the time the message arrived.
	Roles        []Role
	Permissions  Capability
	IsGuildOwner bool
}

// IsDM reports whether the message arrived outside any guild.
func (m *Message) IsDM() bool { return m.GuildID == "" }

// Caller is who invoked a command, rebuilt from every inbound message.
type Caller struct {
	UserID       string
	Username     string
	GuildID      string
	ChannelID    string
	Roles        []Role
	Permissions  Capability
	IsBotOwner   bool
	IsGuildOwner bool
}

// NewCaller builds the caller for msg. isOwner decides bot ownership.
func NewCaller(msg *Message, isOwner func(userID string) bool) *Caller {
	c := &Caller{
		UserID:       msg.AuthorID,
		Username:     msg.AuthorName,
		GuildID:      msg.GuildID,
		ChannelID:    msg.ChannelID,
		Roles:        msg.Roles,
		Permissions:  msg.Permissions,
		IsGuildOwner: msg.IsGuildOwner,
	}
	if isOwner != nil {
		c.IsBotOwner = isOwner(msg.AuthorID)
	}
	return c
}

// HasRoleLike reports whether any of the caller's role names contains one of
// fragments, case-insensitively.
func (c *Caller) HasRoleLike(fragments []string) bool {
	for _, r := range c.Roles {
		name := strings.ToLower(r.Name)
		for _, f := range fragments {
			if f != "" && strings.Contains(name, strings.ToLower(f)) {
				return true
			}
		}
	}
	return false
}

// Channel is the reply-capable handle of the channel a message arrived in.
type Channel interface {
	Send(ctx context.Context, content string) (messageID string, err error)
	React(ctx context.Context, messageID, emoji string) error
	Unreact(ctx context.Context, messageID, emoji string) error
	Typing(ctx context.Context) error
	Delete(ctx context.Context, messageID string) error
}
