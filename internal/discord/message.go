package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/sentinel/internal/command"
)

// snapshot converts a gateway message into the dispatcher's view of it,
// resolving the author's roles and channel permissions at this moment.
func (b *Bot) snapshot(s *discordgo.Session, m *discordgo.MessageCreate) *command.Message {
	msg := &command.Message{
		ID:          m.ID,
		Content:     m.Content,
		ChannelID:   m.ChannelID,
		GuildID:     m.GuildID,
		AuthorID:    m.Author.ID,
		AuthorName:  m.Author.Username,
		AuthorIsBot: m.Author.Bot,
	}
	if s.State.User != nil {
		for _, u := range m.Mentions {
			if u.ID == s.State.User.ID {
				msg.MentionsBot = true
				break
			}
		}
	}
	if m.GuildID == "" {
		return msg
	}

	if perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID); err == nil {
		msg.Permissions = command.Capability(perms)
	} else {
		b.log.Debug().Err(err).Str("user", m.Author.ID).Msg("failed to resolve permissions")
	}

	if g, err := s.State.Guild(m.GuildID); err == nil {
		msg.IsGuildOwner = g.OwnerID == m.Author.ID
	} else if g, err := s.Guild(m.GuildID); err == nil {
		msg.IsGuildOwner = g.OwnerID == m.Author.ID
	}

	if m.Member != nil {
		for _, id := range m.Member.Roles {
			role := command.Role{ID: id}
			if r, err := s.State.Role(m.GuildID, id); err == nil {
				role.Name = r.Name
			}
			msg.Roles = append(msg.Roles, role)
		}
	}
	return msg
}
