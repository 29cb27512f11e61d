package growth

import (
	"time"

	"github.com/xtding233/nurture-economy/internal/game"
)

// Stat indexes Stats in canonical order.
type Stat int

const (
	Power Stat = iota
	Wisdom
	Agility
	Charm
	Vitality
)

func (s Stat) String() string {
	if s < 0 || int(s) >= len(game.StatNames) {
		return "unknown"
	}
	return game.StatNames[s]
}

// ParseStat maps a stat name to its Stat.
func ParseStat(name string) (Stat, bool) {
	i := game.StatIndex(name)
	return Stat(i), i >= 0
}

// Stats holds the five stat values.
type Stats [5]int

// Dominant returns the stat with the strictly greatest value; ties go to
// the earliest stat in canonical order.
func (s Stats) Dominant() Stat {
	best := Power
	for i := 1; i < len(s); i++ {
		if s[i] > s[best] {
			best = Stat(i)
		}
	}
	return best
}

type HistoryEntry struct {
	ActionID  int   `json:"actionId"`
	Timestamp int64 `json:"timestamp"` // unix seconds
	SessionID int   `json:"sessionId"`

	// full-resolution time for entries made this process; zero after Restore
	at time.Time
}

// performedAt is the most precise time known for the entry.
func (h HistoryEntry) performedAt() time.Time {
	if !h.at.IsZero() {
		return h.at
	}
	return time.Unix(h.Timestamp, 0)
}

// Creature is the egg being raised.
type Creature struct {
	ID      int            `json:"id"`
	Type    string         `json:"type"`
	Level   int            `json:"level"`
	Stats   Stats          `json:"stats"`
	History []HistoryEntry `json:"history"` // oldest first
}

func (c *Creature) clone() Creature {
	out := *c
	out.History = append([]HistoryEntry(nil), c.History...)
	return out
}

type StatChange struct {
	Stat string `json:"stat"`
	Old  int    `json:"old"`
	New  int    `json:"new"`
}

// Result reports a PerformAction call.
type Result struct {
	Success      bool         `json:"success"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Err          error        `json:"-"`
	StatChanges  []StatChange `json:"stat_changes,omitempty"`
	NewLevel     int          `json:"new_level"`
}
