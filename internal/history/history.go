// Package history keeps the most recent command invocations per guild in
// memory.
package history

import (
	"sync"
	"time"
)

const DefaultSize = 20

// Record is one executed command.
type Record struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
	Failed    bool      `json:"failed"`
}

type ring struct {
	items []Record
	next  int
	full  bool
}

// Store is a per-guild ring buffer of records.
type Store struct {
	mu     sync.Mutex
	size   int
	guilds map[string]*ring
}

func New(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{size: size, guilds: make(map[string]*ring)}
}

// Add appends rec to the guild's history, dropping the oldest record when
// full.
func (s *Store) Add(guildID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.guilds[guildID]
	if !ok {
		r = &ring{items: make([]Record, s.size)}
		s.guilds[guildID] = r
	}
	r.items[r.next] = rec
	r.next = (r.next + 1) % s.size
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) Recent(guildID string, limit int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.guilds[guildID]
	if !ok {
		return nil
	}
	n := r.next
	if r.full {
		n = s.size
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Record, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, r.items[(r.next-i+s.size)%s.size])
	}
	return out
}

// Guilds returns the number of guilds with history.
func (s *Store) Guilds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guilds)
}

// Trim drops guild histories whose newest record is older than maxAge.
func (s *Store) Trim(maxAge time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.guilds {
		newest := r.items[(r.next-1+s.size)%s.size]
		if now.Sub(newest.Datetime) > maxAge {
			delete(s.guilds, id)
			removed++
		}
	}
	return removed
}
