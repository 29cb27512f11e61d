// Package growth runs growth actions against creatures: it charges the
// action cost, applies stat deltas, advances the level and keeps a bounded
// action history.
package growth

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game"
	"github.com/xtding233/nurture-economy/internal/weighted"
)

var (
	ErrCreatureNotFound = errors.New("creature not found")
	ErrActionNotFound   = errors.New("action not found")
	ErrLevelOutOfRange  = errors.New("level out of range for action")
	ErrCannotAfford     = errors.New("cannot afford action")
	ErrSpendFailed      = errors.New("spend failed")
)

// Wallet is the slice of the currency ledger growth needs.
type Wallet interface {
	CanAfford(costCommon, costSpecial int, creatureType string) bool
	SpendForCost(costCommon, costSpecial int, creatureType, purpose string, creatureID int) bool
}

type Options struct {
	Logger *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// CooldownUnit is the length of one cooldown turn. Default one minute.
	CooldownUnit time.Duration
	// Seeds feeds the per-call selector seed. Default crypto random.
	Seeds weighted.RandomSource
}

// Orchestrator owns the creature map. Not safe for concurrent use.
type Orchestrator struct {
	tables    *game.Tables
	wallet    Wallet
	ch        *event.Channel
	log       *log.Logger
	now       func() time.Time
	unit      time.Duration
	seeds     weighted.RandomSource
	creatures map[int]*Creature
	sessionID int
}

func New(tables *game.Tables, wallet Wallet, ch *event.Channel, opts Options) *Orchestrator {
	o := &Orchestrator{
		tables:    tables,
		wallet:    wallet,
		ch:        ch,
		log:       opts.Logger,
		now:       opts.Now,
		unit:      opts.CooldownUnit,
		seeds:     opts.Seeds,
		creatures: make(map[int]*Creature),
		sessionID: 1,
	}
	if o.log == nil {
		o.log = log.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.unit <= 0 {
		o.unit = time.Minute
	}
	if o.seeds == nil {
		o.seeds = weighted.DefaultRNG()
	}
	return o
}

// SetTables swaps the static definitions after a reload.
func (o *Orchestrator) SetTables(t *game.Tables) { o.tables = t }

// SessionID is the id stamped on new history entries.
func (o *Orchestrator) SessionID() int { return o.sessionID }

// NewSession advances the session counter and returns the new id.
func (o *Orchestrator) NewSession() int {
	o.sessionID++
	return o.sessionID
}

// EnsureCreature returns the creature, creating it at level 1 on first use.
// The type of an existing creature is never changed.
func (o *Orchestrator) EnsureCreature(id int, creatureType string) Creature {
	if c, ok := o.creatures[id]; ok {
		return c.clone()
	}
	c := &Creature{ID: id, Type: game.NormalizeType(creatureType), Level: 1}
	o.creatures[id] = c
	return c.clone()
}

// Creature returns a copy of the creature.
func (o *Orchestrator) Creature(id int) (Creature, bool) {
	c, ok := o.creatures[id]
	if !ok {
		return Creature{}, false
	}
	return c.clone(), true
}

// CreatureIDs lists known creatures in ascending id order.
func (o *Orchestrator) CreatureIDs() []int {
	ids := make([]int, 0, len(o.creatures))
	for id := range o.creatures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RemoveCreature deletes the creature. It reports whether it existed.
func (o *Orchestrator) RemoveCreature(id int) bool {
	if _, ok := o.creatures[id]; !ok {
		return false
	}
	delete(o.creatures, id)
	return true
}

// SetStats overwrites the stats of an existing creature, clamping to >= 0.
func (o *Orchestrator) SetStats(id int, stats Stats) bool {
	c, ok := o.creatures[id]
	if !ok {
		return false
	}
	for i, v := range stats {
		c.Stats[i] = max(0, v)
	}
	return true
}

// History returns a copy of the creature's action history, oldest first.
func (o *Orchestrator) History(id int) []HistoryEntry {
	c, ok := o.creatures[id]
	if !ok {
		return nil
	}
	return append([]HistoryEntry(nil), c.History...)
}

func (o *Orchestrator) fail(err error, format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	o.log.Printf("growth: %s", msg)
	return Result{Success: false, ErrorMessage: msg, Err: err}
}

// PerformAction validates and applies actionID to the creature.
// Checks run in order: creature, action, level window, affordability,
// spend. Nothing is mutated before the failing check.
func (o *Orchestrator) PerformAction(creatureID, actionID int) Result {
	c, ok := o.creatures[creatureID]
	if !ok {
		return o.fail(ErrCreatureNotFound, "creature %d not found", creatureID)
	}
	action, ok := o.tables.Action(actionID)
	if !ok {
		return o.fail(ErrActionNotFound, "action %d not found", actionID)
	}
	if c.Level < action.MinLevel || c.Level > action.MaxLevel {
		return o.fail(ErrLevelOutOfRange, "action %d needs level %d-%d, creature %d is level %d",
			actionID, action.MinLevel, action.MaxLevel, creatureID, c.Level)
	}
	if !o.wallet.CanAfford(action.CostCommon, action.CostSpecial, c.Type) {
		return o.fail(ErrCannotAfford, "creature %d cannot afford action %d (common %d, special %d)",
			creatureID, actionID, action.CostCommon, action.CostSpecial)
	}
	purpose := fmt.Sprintf("growth_action:%d", actionID)
	if !o.wallet.SpendForCost(action.CostCommon, action.CostSpecial, c.Type, purpose, creatureID) {
		return o.fail(ErrSpendFailed, "spend for action %d failed", actionID)
	}

	res := Result{Success: true}
	for _, eff := range action.Effects {
		stat, ok := ParseStat(eff.Stat)
		if !ok {
			continue
		}
		old := c.Stats[stat]
		next := max(0, old+eff.Delta)
		c.Stats[stat] = next
		res.StatChanges = append(res.StatChanges, StatChange{Stat: stat.String(), Old: old, New: next})
		event.Publish(o.ch, event.StatChanged{CreatureID: creatureID, Stat: stat.String(), Old: old, New: next})
	}

	oldLevel := c.Level
	c.Level++
	res.NewLevel = c.Level
	event.Publish(o.ch, event.LevelChanged{
		CreatureID: creatureID,
		Old:        oldLevel,
		New:        c.Level,
		Amount:     1,
		Reason:     event.ReasonGrowthAction,
	})

	at := o.now()
	c.History = append(c.History, HistoryEntry{
		ActionID:  actionID,
		Timestamp: at.Unix(),
		SessionID: o.sessionID,
		at:        at,
	})
	if limit := o.historyLimit(); len(c.History) > limit {
		c.History = append([]HistoryEntry(nil), c.History[len(c.History)-limit:]...)
	}

	event.Publish(o.ch, event.GrowthActionPerformed{
		CreatureID: creatureID,
		ActionID:   actionID,
		Level:      c.Level,
		SessionID:  o.sessionID,
	})
	return res
}

func (o *Orchestrator) historyLimit() int {
	if n := o.tables.Settings.HistoryLimit; n > 0 {
		return n
	}
	return 100
}

// RecentCooldownIDs returns the actions in the creature's history that are
// still cooling down: cooldown_turns > 0 and performed less than
// cooldown_turns units ago.
func (o *Orchestrator) RecentCooldownIDs(creatureID int) map[int]bool {
	recent := map[int]bool{}
	c, ok := o.creatures[creatureID]
	if !ok {
		return recent
	}
	now := o.now()
	for _, h := range c.History {
		a, ok := o.tables.Action(h.ActionID)
		if !ok || a.CooldownTurns <= 0 {
			continue
		}
		if now.Sub(h.performedAt()) < time.Duration(a.CooldownTurns)*o.unit {
			recent[h.ActionID] = true
		}
	}
	return recent
}

// AvailableActions samples up to count actions for a creature at level.
// count <= 0 uses the table default.
func (o *Orchestrator) AvailableActions(creatureID, level, count int) []game.ActionDef {
	if count <= 0 {
		count = o.tables.Settings.AvailableActionCount
	}
	seed := weighted.NextSeed(o.seeds)
	return weighted.Pick(o.tables.ActionPool(), level, count, o.RecentCooldownIDs(creatureID), seed)
}

// ResetStats zeroes the stats, drops the level to 1 and clears history.
func (o *Orchestrator) ResetStats(creatureID int) bool {
	c, ok := o.creatures[creatureID]
	if !ok {
		o.log.Printf("growth: reset: creature %d not found", creatureID)
		return false
	}
	old := c.Level
	c.Stats = Stats{}
	c.Level = 1
	c.History = nil
	event.Publish(o.ch, event.LevelChanged{
		CreatureID: creatureID,
		Old:        old,
		New:        1,
		Amount:     0,
		Reason:     event.ReasonEvolutionReset,
	})
	return true
}
