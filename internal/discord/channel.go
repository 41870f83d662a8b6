package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

const maxMessageLen = 2000

// Channel implements command.Channel for one Discord channel.
type Channel struct {
	s  *discordgo.Session
	id string
}

func (c *Channel) Send(ctx context.Context, content string) (string, error) {
	if r := []rune(content); len(r) > maxMessageLen {
		content = string(r[:maxMessageLen-1]) + "…"
	}
	m, err := c.s.ChannelMessageSendComplex(c.id, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (c *Channel) React(ctx context.Context, messageID, emoji string) error {
	return c.s.MessageReactionAdd(c.id, messageID, emoji, discordgo.WithContext(ctx))
}

func (c *Channel) Unreact(ctx context.Context, messageID, emoji string) error {
	return c.s.MessageReactionRemove(c.id, messageID, emoji, "@me", discordgo.WithContext(ctx))
}

func (c *Channel) Typing(ctx context.Context) error {
	return c.s.ChannelTyping(c.id, discordgo.WithContext(ctx))
}

func (c *Channel) Delete(ctx context.Context, messageID string) error {
	return c.s.ChannelMessageDelete(c.id, messageID, discordgo.WithContext(ctx))
}
