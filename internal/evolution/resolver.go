// Package evolution decides when a creature may evolve and which form it
// becomes.
package evolution

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game"
	"github.com/xtding233/nurture-economy/internal/growth"
	"github.com/xtding233/nurture-economy/internal/weighted"
)

var (
	ErrLevelTooLow      = errors.New("level below required level")
	ErrNoMatchingForm   = errors.New("no evolution rule matches")
	ErrCreatureNotFound = errors.New("creature not found")
)

// Failure reasons carried by event.EvolutionFailed.
const (
	ReasonLevelTooLow = "level_too_low"
	ReasonNoForm      = "no_matching_form"
	ReasonNoCreature  = "creature_not_found"
)

// Creatures is the slice of the growth orchestrator the resolver reads.
type Creatures interface {
	Creature(id int) (growth.Creature, bool)
	ResetStats(id int) bool
}

// Collection registers evolved forms.
type Collection interface {
	Register(formID int) bool
}

type Options struct {
	Logger *log.Logger
	// RNG drives outcome rolls. Default crypto random.
	RNG weighted.RandomSource
	Now func() time.Time
}

type Condition struct {
	CanEvolve     bool   `json:"can_evolve"`
	RequiredLevel int    `json:"required_level"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

type Result struct {
	Success         bool         `json:"success"`
	ErrorMessage    string       `json:"error_message,omitempty"`
	Err             error        `json:"-"`
	CreatureID      int          `json:"creature_id"`
	FormID          int          `json:"form_id,omitempty"`
	FormName        string       `json:"form_name,omitempty"`
	FinalStats      growth.Stats `json:"final_stats"`
	Stage           int          `json:"stage,omitempty"`
	IsNewForm       bool         `json:"is_new_form"`
	DuplicateReward int          `json:"duplicate_reward,omitempty"`
}

type HistoryEntry struct {
	FormID    int    `json:"formId"`
	Level     int    `json:"level"`
	Stats     [5]int `json:"stats"`
	Timestamp int64  `json:"timestamp"`
}

// Resolver keeps per-creature evolution state. Not safe for concurrent use.
type Resolver struct {
	tables     *game.Tables
	creatures  Creatures
	collection Collection
	ch         *event.Channel
	log        *log.Logger
	rng        weighted.RandomSource
	now        func() time.Time

	required map[int]int
	history  map[int][]HistoryEntry
	stages   map[int]int
}

func New(tables *game.Tables, creatures Creatures, collection Collection, ch *event.Channel, opts Options) *Resolver {
	r := &Resolver{
		tables:     tables,
		creatures:  creatures,
		collection: collection,
		ch:         ch,
		log:        opts.Logger,
		rng:        opts.RNG,
		now:        opts.Now,
		required:   make(map[int]int),
		history:    make(map[int][]HistoryEntry),
		stages:     make(map[int]int),
	}
	if r.log == nil {
		r.log = log.Default()
	}
	if r.rng == nil {
		r.rng = weighted.DefaultRNG()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// SetTables swaps the rule and form tables after a reload.
func (r *Resolver) SetTables(t *game.Tables) { r.tables = t }

// RequiredLevel returns the creature's override or the table default.
func (r *Resolver) RequiredLevel(creatureID int) int {
	if lvl, ok := r.required[creatureID]; ok {
		return lvl
	}
	return r.tables.Settings.DefaultRequiredLevel
}

// SetRequiredLevel overrides the level a creature needs to evolve.
// A level below 1 removes the override.
func (r *Resolver) SetRequiredLevel(creatureID, level int) {
	if level < 1 {
		delete(r.required, creatureID)
		return
	}
	r.required[creatureID] = level
}

func (r *Resolver) CheckCondition(creatureID, level int) Condition {
	req := r.RequiredLevel(creatureID)
	if level >= req {
		return Condition{CanEvolve: true, RequiredLevel: req}
	}
	return Condition{
		CanEvolve:     false,
		RequiredLevel: req,
		ErrorMessage:  fmt.Sprintf("level %d is below required level %d", level, req),
	}
}

// SelectRule picks, among rows for (type, stat) with MinNurtureLevel <=
// level, the one with the greatest MinNurtureLevel.
func (r *Resolver) SelectRule(creatureType string, dominant growth.Stat, level int) (game.RuleRow, bool) {
	var best game.RuleRow
	found := false
	for _, row := range r.tables.Rules(creatureType, dominant.String()) {
		if row.MinNurtureLevel > level {
			continue
		}
		if !found || row.MinNurtureLevel > best.MinNurtureLevel {
			best, found = row, true
		}
	}
	return best, found
}

// DetermineForm rolls the evolution outcome for the given stats. Creatures
// the orchestrator does not own are evaluated as if their level were
// unbounded, which selects the highest tier.
func (r *Resolver) DetermineForm(creatureID int, creatureType string, level int, stats growth.Stats) (game.FormDef, bool) {
	if _, owned := r.creatures.Creature(creatureID); !owned {
		level = math.MaxInt
	}
	row, ok := r.SelectRule(creatureType, stats.Dominant(), level)
	if !ok {
		return game.FormDef{}, false
	}
	weights := make([]float64, len(row.Outcomes))
	for i, o := range row.Outcomes {
		weights[i] = float64(o.Probability)
	}
	idx := weighted.Roll(weights, r.rng)
	if idx < 0 {
		return game.FormDef{}, false
	}
	return r.tables.Form(row.Outcomes[idx].FormID)
}

func (r *Resolver) fail(res Result, err error, reason string, missing int, msg string) Result {
	r.log.Printf("evolution: creature %d: %s", res.CreatureID, msg)
	event.Publish(r.ch, event.EvolutionFailed{CreatureID: res.CreatureID, Reason: reason, MissingLevel: missing})
	res.Success = false
	res.Err = err
	res.ErrorMessage = msg
	return res
}

// AttemptEvolution runs the eligible → attempt → completed/failed flow.
// It registers the form but does not reset the creature; callers invoke
// ResetStats once the result has been shown.
func (r *Resolver) AttemptEvolution(creatureID, level int, stats growth.Stats) Result {
	res := Result{CreatureID: creatureID, FinalStats: stats}
	event.Publish(r.ch, event.EvolutionAttempted{CreatureID: creatureID, Level: level})

	cond := r.CheckCondition(creatureID, level)
	if !cond.CanEvolve {
		return r.fail(res, ErrLevelTooLow, ReasonLevelTooLow, max(0, cond.RequiredLevel-level), cond.ErrorMessage)
	}
	c, ok := r.creatures.Creature(creatureID)
	if !ok {
		return r.fail(res, ErrCreatureNotFound, ReasonNoCreature, 0, "creature not found")
	}
	form, ok := r.DetermineForm(creatureID, c.Type, level, stats)
	if !ok {
		return r.fail(res, ErrNoMatchingForm, ReasonNoForm, 0,
			fmt.Sprintf("no evolution form for type %q dominant %s at level %d", c.Type, stats.Dominant(), level))
	}

	res.Success = true
	res.FormID = form.ID
	res.FormName = form.Name

	hist := append(r.history[creatureID], HistoryEntry{
		FormID:    form.ID,
		Level:     level,
		Stats:     stats,
		Timestamp: r.now().Unix(),
	})
	if limit := r.historyLimit(); len(hist) > limit {
		hist = append([]HistoryEntry(nil), hist[len(hist)-limit:]...)
	}
	r.history[creatureID] = hist
	r.stages[creatureID]++
	res.Stage = r.stages[creatureID]

	event.Publish(r.ch, event.EvolutionCompleted{
		CreatureID: creatureID,
		FormID:     form.ID,
		Stage:      res.Stage,
		Stats:      stats,
	})

	// Dispatch is synchronous, so the duplicate payout lands in this window.
	sub := event.Subscribe(r.ch, func(e event.DuplicateFormProcessed) {
		if e.FormID == form.ID {
			res.DuplicateReward += e.Amount
		}
	})
	res.IsNewForm = r.collection.Register(form.ID)
	sub.Unsubscribe()
	return res
}

// Evolve attempts an evolution with the creature's current level and
// stats. The creature is left as it is.
func (r *Resolver) Evolve(creatureID int) Result {
	c, ok := r.creatures.Creature(creatureID)
	if !ok {
		res := Result{CreatureID: creatureID}
		event.Publish(r.ch, event.EvolutionAttempted{CreatureID: creatureID})
		return r.fail(res, ErrCreatureNotFound, ReasonNoCreature, 0, "creature not found")
	}
	return r.AttemptEvolution(creatureID, c.Level, c.Stats)
}

// EvolveAndReset runs Evolve and resets the creature on success.
func (r *Resolver) EvolveAndReset(creatureID int) Result {
	res := r.Evolve(creatureID)
	if res.Success {
		r.creatures.ResetStats(creatureID)
	}
	return res
}

func (r *Resolver) historyLimit() int {
	if n := r.tables.Settings.EvolutionHistoryLimit; n > 0 {
		return n
	}
	return 50
}

// History returns a copy of the creature's evolution history, oldest first.
func (r *Resolver) History(creatureID int) []HistoryEntry {
	return append([]HistoryEntry(nil), r.history[creatureID]...)
}

// Stage counts completed evolutions for the creature.
func (r *Resolver) Stage(creatureID int) int { return r.stages[creatureID] }
