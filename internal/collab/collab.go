// Package collab declares the external services command handlers call and
// the error types they use to report degraded features.
package collab

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is a normal "no such record" answer from a provider.
var ErrNotFound = errors.New("not found")

// UnavailableError marks a feature whose backing service failed.
type UnavailableError struct {
	Feature string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Feature, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err for feature unless it is nil, ErrNotFound or already
// an UnavailableError.
func Unavailable(feature string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UnavailableError{Feature: feature, Err: err}
}

// Guard runs fn and converts its error or panic into an UnavailableError.
func Guard(ctx context.Context, feature string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnavailableError{Feature: feature, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return Unavailable(feature, fn(ctx))
}

// ChatContext describes where a chat prompt came from.
type ChatContext struct {
	GuildID  string
	UserID   string
	Username string
	DM       bool
}

type ChatBackend interface {
	Chat(ctx context.Context, prompt string, cc ChatContext) (string, error)
}

type Player struct {
	ID         string
	Nickname   string
	Battles    int64
	Wins       int64
	Rating     int64
	ClanID     string
	LastBattle time.Time
}

// WinRate is the percentage of battles won.
func (p Player) WinRate() float64 {
	if p.Battles == 0 {
		return 0
	}
	return float64(p.Wins) * 100 / float64(p.Battles)
}

type Clan struct {
	ID      string
	Tag     string
	Name    string
	Members int64
	Leader  string
	Created time.Time
}

type StatsProvider interface {
	LookupPlayer(ctx context.Context, name string) (*Player, error)
	LookupClan(ctx context.Context, query string) (*Clan, error)
}

type VoiceBackend interface {
	Join(ctx context.Context, guildID, channelID string) error
	Leave(ctx context.Context, guildID string) error
	Speak(ctx context.Context, guildID, text, voice string) error
}

type Mover struct {
	Symbol    string
	Price     float64
	ChangePct float64
	Volume    float64
}

type MarketDataProvider interface {
	Movers(ctx context.Context, exchange, timeframe string, limit int) ([]Mover, error)
}
