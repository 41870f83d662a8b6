package permission

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/sentinel/internal/command"
)

var capabilityNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite: "Create Instant Invite",
	discordgo.PermissionKickMembers:         "Kick Members",
	discordgo.PermissionBanMembers:          "Ban Members",
	discordgo.PermissionAdministrator:       "Administrator",
	discordgo.PermissionManageChannels:      "Manage Channels",
	discordgo.PermissionManageServer:        "Manage Server",
	discordgo.PermissionAddReactions:        "Add Reactions",
	discordgo.PermissionViewAuditLogs:       "View Audit Logs",
	discordgo.PermissionViewChannel:         "View Channel",
	discordgo.PermissionSendMessages:        "Send Messages",
	discordgo.PermissionSendTTSMessages:     "Send TTS Messages",
	discordgo.PermissionManageMessages:      "Manage Messages",
	discordgo.PermissionEmbedLinks:          "Embed Links",
	discordgo.PermissionAttachFiles:         "Attach Files",
	discordgo.PermissionReadMessageHistory:  "Read Message History",
	discordgo.PermissionMentionEveryone:     "Mention Everyone",
	discordgo.PermissionManageThreads:       "Manage Threads",
	discordgo.PermissionVoiceConnect:        "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:          "Speak",
	discordgo.PermissionVoiceMuteMembers:    "Mute Members",
	discordgo.PermissionVoiceDeafenMembers:  "Deafen Members",
	discordgo.PermissionVoiceMoveMembers:    "Move Members",
	discordgo.PermissionChangeNickname:      "Change Nickname",
	discordgo.PermissionManageNicknames:     "Manage Nicknames",
	discordgo.PermissionManageRoles:         "Manage Roles",
	discordgo.PermissionManageWebhooks:      "Manage Webhooks",
	discordgo.PermissionManageEvents:        "Manage Events",
	discordgo.PermissionModerateMembers:     "Moderate Members",
	discordgo.PermissionUseSlashCommands:    "Use Application Commands",
}

// CapabilityName returns the display name of a single capability flag.
func CapabilityName(c command.Capability) string {
	if name, ok := capabilityNames[int64(c)]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", int64(c))
}

func capabilityList(caps []command.Capability) string {
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, CapabilityName(c))
	}
	return "`" + strings.Join(names, "`, `") + "`"
}
