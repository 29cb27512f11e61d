// Package currency owns every currency balance and the rules for crediting
// and debiting them.
package currency

import (
	"errors"
	"log"
	"math"
	"sort"

	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game"
)

var (
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be > 0")
)

// NoCreature marks ledger operations that are not tied to a creature.
const NoCreature = -1

// maxBalance keeps balances inside 32 bits.
const maxBalance = math.MaxInt32

// BuffSource supplies the percentage buffs applied to running rewards.
type BuffSource interface {
	CommonBuffPercent() int
	SpecialBuffPercent(creatureType string) int
}

// RewardLookup maps a run rank to its base special-currency reward.
type RewardLookup func(rank string) int

// Ledger holds per-currency balances. It is not safe for concurrent use;
// the engine serializes access.
type Ledger struct {
	tables   *game.Tables
	ch       *event.Channel
	log      *log.Logger
	balances map[int]int
	buffs    BuffSource
	rewards  RewardLookup
	// set when UseRewards installed a caller lookup; reloads keep it
	customRewards bool
}

// NewLedger returns an empty ledger. Rank rewards default to the tables.
func NewLedger(tables *game.Tables, ch *event.Channel, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{
		tables:   tables,
		ch:       ch,
		log:      logger,
		balances: make(map[int]int),
		rewards:  tables.RankReward,
	}
}

// UseBuffs attaches the buff provider consulted by ProcessRunningReward.
func (l *Ledger) UseBuffs(b BuffSource) { l.buffs = b }

// UseRewards overrides the rank reward lookup. The override survives
// SetTables. A nil lookup restores the table lookup.
func (l *Ledger) UseRewards(r RewardLookup) {
	if r == nil {
		l.rewards = l.tables.RankReward
		l.customRewards = false
		return
	}
	l.rewards = r
	l.customRewards = true
}

// SetTables swaps the static definitions after a reload. Balances and a
// custom rank lookup are kept.
func (l *Ledger) SetTables(t *game.Tables) {
	l.tables = t
	if !l.customRewards {
		l.rewards = t.RankReward
	}
}

// Amount returns the balance of id, 0 for unknown ids.
func (l *Ledger) Amount(id int) int {
	return l.balances[id]
}

// CommonID is the id of the shared currency.
func (l *Ledger) CommonID() int { return l.tables.Settings.CommonCurrencyID }

// SpecialCurrencyFor resolves the special pool owned by creatureType.
func (l *Ledger) SpecialCurrencyFor(creatureType string) (int, bool) {
	return l.tables.SpecialCurrencyID(creatureType)
}

// Add credits floor(baseAmount * rarityMultiplier) and returns the credited
// amount. Non-positive amounts and unknown ids are rejected with 0.
func (l *Ledger) Add(id, baseAmount int, source string, creatureID int) int {
	def, ok := l.tables.Currency(id)
	if !ok {
		l.log.Printf("currency: add rejected: %v id=%d", ErrUnknownCurrency, id)
		return 0
	}
	if baseAmount <= 0 {
		l.log.Printf("currency: add rejected: %v id=%d amount=%d", ErrInvalidAmount, id, baseAmount)
		return 0
	}
	// the epsilon absorbs float error such as 0.29*100 = 28.999...
	actual := int(math.Floor(float64(baseAmount)*def.RarityMultiplier + 1e-9))

	old := l.balances[id]
	next := old + actual
	if next > maxBalance || next < old {
		next = maxBalance
		actual = next - old
	}
	l.balances[id] = next

	event.Publish(l.ch, event.CurrencyGained{
		CurrencyID: id,
		BaseAmount: baseAmount,
		Amount:     actual,
		Source:     source,
		CreatureID: creatureID,
	})
	event.Publish(l.ch, event.CurrencyBalanceChanged{CurrencyID: id, Old: old, New: next, Delta: actual})
	return actual
}

// Spend debits amount. It fails without mutation when amount <= 0 or the
// balance is short.
func (l *Ledger) Spend(id, amount int, purpose string, creatureID int) bool {
	if amount <= 0 {
		l.log.Printf("currency: spend rejected: %v id=%d amount=%d", ErrInvalidAmount, id, amount)
		return false
	}
	old := l.balances[id]
	if old < amount {
		l.log.Printf("currency: spend rejected: %v id=%d have=%d need=%d", ErrInsufficientFunds, id, old, amount)
		return false
	}
	next := old - amount
	l.balances[id] = next

	event.Publish(l.ch, event.CurrencySpent{CurrencyID: id, Amount: amount, Purpose: purpose, CreatureID: creatureID})
	event.Publish(l.ch, event.CurrencyBalanceChanged{CurrencyID: id, Old: old, New: next, Delta: -amount})
	return true
}

// CanAfford checks the common and the creature type's special pool
// independently. A zero cost always passes for its pool.
func (l *Ledger) CanAfford(costCommon, costSpecial int, creatureType string) bool {
	if costCommon < 0 || costSpecial < 0 {
		return false
	}
	if costCommon > 0 && l.Amount(l.CommonID()) < costCommon {
		return false
	}
	if costSpecial > 0 {
		sid, ok := l.SpecialCurrencyFor(creatureType)
		if !ok || l.Amount(sid) < costSpecial {
			return false
		}
	}
	return true
}

// SpendForCost debits the common pool, then the special pool.
//
// Both pools are validated before either is touched, so a short special
// balance can no longer leave the common pool debited. Callers are still
// expected to call CanAfford first.
func (l *Ledger) SpendForCost(costCommon, costSpecial int, creatureType, purpose string, creatureID int) bool {
	if !l.CanAfford(costCommon, costSpecial, creatureType) {
		l.log.Printf("currency: spend for cost rejected: %v common=%d special=%d type=%q",
			ErrInsufficientFunds, costCommon, costSpecial, creatureType)
		return false
	}
	if costCommon > 0 && !l.Spend(l.CommonID(), costCommon, purpose, creatureID) {
		return false
	}
	if costSpecial > 0 {
		sid, _ := l.SpecialCurrencyFor(creatureType)
		if !l.Spend(sid, costSpecial, purpose, creatureID) {
			// unreachable under a single writer; CanAfford checked both pools
			return false
		}
	}
	return true
}

// Balance is one persisted currency row.
type Balance struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Balances lists every known currency in id order, including zero balances.
func (l *Ledger) Balances() []Balance {
	ids := l.tables.CurrencyIDs()
	out := make([]Balance, 0, len(ids))
	for _, id := range ids {
		out = append(out, Balance{ID: id, Amount: l.balances[id]})
	}
	return out
}

// Document is the currency_data.json payload.
type Document struct {
	Currencies []Balance `json:"currencies"`
	SaveTime   int64     `json:"saveTime"`
}

// Snapshot captures the non-zero balances.
func (l *Ledger) Snapshot(saveTime int64) Document {
	doc := Document{Currencies: []Balance{}, SaveTime: saveTime}
	for id, amount := range l.balances {
		if amount != 0 {
			doc.Currencies = append(doc.Currencies, Balance{ID: id, Amount: amount})
		}
	}
	sort.Slice(doc.Currencies, func(i, j int) bool { return doc.Currencies[i].ID < doc.Currencies[j].ID })
	return doc
}

// Restore replaces all balances. Unknown ids are dropped and negative
// amounts clamp to zero. No events are published.
func (l *Ledger) Restore(doc Document) {
	l.balances = make(map[int]int, len(doc.Currencies))
	for _, b := range doc.Currencies {
		if _, ok := l.tables.Currency(b.ID); !ok {
			l.log.Printf("currency: restore dropped unknown id=%d", b.ID)
			continue
		}
		amount := b.Amount
		if amount < 0 {
			amount = 0
		}
		if amount > maxBalance {
			amount = maxBalance
		}
		l.balances[b.ID] = amount
	}
}
