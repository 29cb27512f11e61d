// Package engine wires the economy services together and serializes every
// call behind one lock.
package engine

import (
	"log"
	"sync"
	"time"

	"github.com/xtding233/nurture-economy/internal/collection"
	"github.com/xtding233/nurture-economy/internal/currency"
	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/evolution"
	"github.com/xtding233/nurture-economy/internal/game"
	"github.com/xtding233/nurture-economy/internal/growth"
	"github.com/xtding233/nurture-economy/internal/persist"
	"github.com/xtding233/nurture-economy/internal/weighted"
)

type Options struct {
	Logger *log.Logger
	// Store backs Load and Save. Default is an in-memory store.
	Store persist.Store
	// Seed makes action sampling and evolution rolls reproducible.
	// Zero uses crypto random.
	Seed         uint64
	CooldownUnit time.Duration
	Now          func() time.Time
	// RankRewards replaces the table rank reward lookup when set.
	RankRewards currency.RewardLookup
}

// Engine owns one player's economy state.
type Engine struct {
	mu sync.Mutex
	// saveMu runs Load and Save one at a time so every persisted set of
	// documents comes from a single snapshot.
	saveMu sync.Mutex

	log   *log.Logger
	store persist.Store
	now   func() time.Time

	tables   *game.Tables
	ch       *event.Channel
	ledger   *currency.Ledger
	registry *collection.Registry
	growth   *growth.Orchestrator
	resolver *evolution.Resolver
}

func New(tables *game.Tables, opts Options) *Engine {
	e := &Engine{
		log:    opts.Logger,
		store:  opts.Store,
		now:    opts.Now,
		tables: tables,
		ch:     event.New(),
	}
	if e.log == nil {
		e.log = log.Default()
	}
	if e.store == nil {
		e.store = persist.NewMemoryStore()
	}
	if e.now == nil {
		e.now = time.Now
	}

	var seeds, rolls weighted.RandomSource
	if opts.Seed != 0 {
		seeds = weighted.NewSeededRNG(opts.Seed)
		rolls = weighted.NewSeededRNG(opts.Seed + 1)
	}

	e.ledger = currency.NewLedger(tables, e.ch, e.log)
	e.registry = collection.New(tables, e.ledger, e.ch, e.log)
	e.ledger.UseBuffs(e.registry)
	if opts.RankRewards != nil {
		e.ledger.UseRewards(opts.RankRewards)
	}
	e.growth = growth.New(tables, e.ledger, e.ch, growth.Options{
		Logger:       e.log,
		Now:          e.now,
		CooldownUnit: opts.CooldownUnit,
		Seeds:        seeds,
	})
	e.resolver = evolution.New(tables, e.growth, e.registry, e.ch, evolution.Options{
		Logger: e.log,
		RNG:    rolls,
		Now:    e.now,
	})
	return e
}

// Events returns the engine's channel. Handlers run on the goroutine that
// holds the engine lock and must not call back into the engine.
func (e *Engine) Events() *event.Channel { return e.ch }

func (e *Engine) Tables() *game.Tables {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tables
}

// ReloadTables swaps the static tables in every service. Balances,
// creatures and the collection are kept; buffs are recomputed.
func (e *Engine) ReloadTables(t *game.Tables) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tables = t
	e.ledger.SetTables(t)
	e.registry.SetTables(t)
	e.growth.SetTables(t)
	e.resolver.SetTables(t)
	e.log.Printf("engine: tables reloaded (version %s)", t.Version)
}

func (e *Engine) EnsureCreature(id int, creatureType string) growth.Creature {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.growth.EnsureCreature(id, creatureType)
}

func (e *Engine) Creature(id int) (growth.Creature, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.growth.Creature(id)
}

func (e *Engine) CreatureIDs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.growth.CreatureIDs()
}

func (e *Engine) PerformAction(creatureID, actionID int) growth.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.growth.PerformAction(creatureID, actionID)
}

// AvailableActions samples actions for the creature's current level.
func (e *Engine) AvailableActions(creatureID, count int) ([]game.ActionDef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.growth.Creature(creatureID)
	if !ok {
		return nil, growth.ErrCreatureNotFound
	}
	return e.growth.AvailableActions(creatureID, c.Level, count), nil
}

func (e *Engine) ActionHistory(creatureID int) []growth.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.growth.History(creatureID)
}

func (e *Engine) ResetStats(creatureID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.growth.ResetStats(creatureID)
}

func (e *Engine) CheckEvolution(creatureID int) (evolution.Condition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.growth.Creature(creatureID)
	if !ok {
		return evolution.Condition{}, growth.ErrCreatureNotFound
	}
	return e.resolver.CheckCondition(creatureID, c.Level), nil
}

func (e *Engine) SetRequiredLevel(creatureID, level int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolver.SetRequiredLevel(creatureID, level)
}

// AttemptEvolution evolves the creature from its current level and stats
// without resetting it.
func (e *Engine) AttemptEvolution(creatureID int) evolution.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.Evolve(creatureID)
}

// EvolveAndReset evolves the creature and resets it on success.
func (e *Engine) EvolveAndReset(creatureID int) evolution.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.EvolveAndReset(creatureID)
}

func (e *Engine) EvolutionHistory(creatureID int) []evolution.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.History(creatureID)
}

func (e *Engine) Stage(creatureID int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.Stage(creatureID)
}

func (e *Engine) AddCurrency(id, amount int, source string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Add(id, amount, source, currency.NoCreature)
}

func (e *Engine) ProcessRunningReward(rc currency.RunContext) currency.RunReward {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.ProcessRunningReward(rc)
}

func (e *Engine) Balances() []currency.Balance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Balances()
}

// CollectionView is a point-in-time summary of the collection.
type CollectionView struct {
	Registered       []int          `json:"registered"`
	Count            int            `json:"count"`
	CommonBuff       int            `json:"common_buff_percent"`
	SpecialBuffs     map[string]int `json:"special_buff_percent"`
	DuplicateBuff    int            `json:"duplicate_buff_percent"`
	CollectionTarget int            `json:"collection_target"`
}

func (e *Engine) Collection() CollectionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := CollectionView{
		Registered:    e.registry.Registered(),
		Count:         e.registry.Count(),
		CommonBuff:    e.registry.CommonBuffPercent(),
		SpecialBuffs:  map[string]int{},
		DuplicateBuff: e.registry.DuplicateBuffPercent(),
	}
	for _, id := range e.tables.CurrencyIDs() {
		def, ok := e.tables.Currency(id)
		if !ok || def.TypeTag == game.CommonTag {
			continue
		}
		if pct := e.registry.SpecialBuffPercent(def.TypeTag); pct != 0 {
			v.SpecialBuffs[def.TypeTag] = pct
		}
	}
	v.CollectionTarget = e.tables.FormCount()
	return v
}
