package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrNotConnected = errors.New("not connected to voice in this guild")
	ErrNoSpeech     = errors.New("speech synthesis is not available")
)

// Voice implements collab.VoiceBackend. Operations on one guild are
// serialized by a per-guild lock.
type Voice struct {
	s *discordgo.Session

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewVoice(s *discordgo.Session) *Voice {
	return &Voice{s: s, locks: make(map[string]*sync.Mutex)}
}

func (v *Voice) lock(guildID string) func() {
	v.mu.Lock()
	l, ok := v.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		v.locks[guildID] = l
	}
	v.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (v *Voice) Join(_ context.Context, guildID, channelID string) error {
	defer v.lock(guildID)()
	_, err := v.s.ChannelVoiceJoin(guildID, channelID, false, true)
	return err
}

func (v *Voice) Leave(_ context.Context, guildID string) error {
	defer v.lock(guildID)()

	v.s.RLock()
	vc, ok := v.s.VoiceConnections[guildID]
	v.s.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	return vc.Disconnect()
}

// Speak requires a speech engine, which this build does not ship.
func (v *Voice) Speak(_ context.Context, guildID, _, _ string) error {
	defer v.lock(guildID)()

	v.s.RLock()
	_, ok := v.s.VoiceConnections[guildID]
	v.s.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	return ErrNoSpeech
}
