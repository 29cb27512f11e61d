// Package collection keeps the account-wide set of unlocked evolution forms
// and the economy buffs that set grants.
package collection

import (
	"log"
	"sort"

	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game"
)

// Wallet is the slice of the currency ledger the registry pays through.
type Wallet interface {
	Add(id, baseAmount int, source string, creatureID int) int
	SpecialCurrencyFor(creatureType string) (int, bool)
}

// Registry is a grow-only set of form ids plus buff totals derived from it.
// Not safe for concurrent use.
type Registry struct {
	tables *game.Tables
	wallet Wallet
	ch     *event.Channel
	log    *log.Logger

	registered map[int]bool

	// derived; rebuilt by RecomputeBuffs, never adjusted in place
	commonBuff  int
	specialBuff map[string]int
	dupBuff     int
}

func New(tables *game.Tables, wallet Wallet, ch *event.Channel, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		tables:      tables,
		wallet:      wallet,
		ch:          ch,
		log:         logger,
		registered:  make(map[int]bool),
		specialBuff: make(map[string]int),
	}
}

// SetTables swaps the form definitions and recomputes buffs from them.
func (r *Registry) SetTables(t *game.Tables) {
	r.tables = t
	r.RecomputeBuffs()
}

// Register adds formID. It returns true only the first time; later calls
// pay the duplicate reward instead and return false.
func (r *Registry) Register(formID int) bool {
	form, ok := r.tables.Form(formID)
	if !ok {
		r.log.Printf("collection: register rejected: unknown form %d", formID)
		return false
	}
	if r.registered[formID] {
		r.ProcessDuplicate(formID)
		return false
	}
	r.registered[formID] = true
	event.Publish(r.ch, event.FormRegistered{
		FormID:       formID,
		CreatureType: game.NormalizeType(form.CreatureType),
		Total:        len(r.registered),
	})
	r.RecomputeBuffs()
	return true
}

// DuplicateReward is what ProcessDuplicate would pay for formID right now,
// before the currency's rarity multiplier.
func (r *Registry) DuplicateReward(formID int) int {
	form, ok := r.tables.Form(formID)
	if !ok || form.DuplicateRewardAmount <= 0 {
		return 0
	}
	return form.DuplicateRewardAmount * (100 + max(0, r.dupBuff)) / 100
}

// ProcessDuplicate credits the form's duplicate reward, raised by the
// duplicate buff, to the form's special currency and returns the credited
// amount.
func (r *Registry) ProcessDuplicate(formID int) int {
	form, ok := r.tables.Form(formID)
	if !ok {
		r.log.Printf("collection: duplicate rejected: unknown form %d", formID)
		return 0
	}
	amount := r.DuplicateReward(formID)
	currencyID := -1
	credited := 0
	if sid, ok := r.wallet.SpecialCurrencyFor(form.CreatureType); ok {
		currencyID = sid
		if amount > 0 {
			credited = r.wallet.Add(sid, amount, "duplicate_form", -1)
		}
	} else {
		r.log.Printf("collection: form %d type %q has no special currency", formID, form.CreatureType)
	}
	event.Publish(r.ch, event.DuplicateFormProcessed{FormID: formID, CurrencyID: currencyID, Amount: credited})
	return credited
}

// RecomputeBuffs rebuilds every buff total from the registered set.
// Stacking is additive and uncapped.
func (r *Registry) RecomputeBuffs() {
	r.commonBuff = 0
	r.specialBuff = make(map[string]int)
	r.dupBuff = 0
	for id := range r.registered {
		form, ok := r.tables.Form(id)
		if !ok || form.BuffType == game.BuffNone || form.BuffValuePercent <= 0 {
			continue
		}
		switch form.BuffType {
		case game.BuffCommonCurrencyGain:
			r.commonBuff += form.BuffValuePercent
		case game.BuffSpecialCurrencyGain:
			r.specialBuff[form.BuffTarget()] += form.BuffValuePercent
		case game.BuffDuplicateRewardBonus:
			r.dupBuff += form.BuffValuePercent
		}
	}
}

func (r *Registry) CommonBuffPercent() int { return r.commonBuff }

func (r *Registry) SpecialBuffPercent(creatureType string) int {
	return r.specialBuff[game.NormalizeType(creatureType)]
}

func (r *Registry) DuplicateBuffPercent() int { return r.dupBuff }

func (r *Registry) IsRegistered(formID int) bool { return r.registered[formID] }

func (r *Registry) Count() int { return len(r.registered) }

// Registered lists the registered form ids in ascending order.
func (r *Registry) Registered() []int {
	ids := make([]int, 0, len(r.registered))
	for id := range r.registered {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Document is the collection_data.json payload.
type Document struct {
	RegisteredForms []int `json:"registeredForms"`
	SaveTime        int64 `json:"saveTime"`
}

func (r *Registry) Snapshot(saveTime int64) Document {
	return Document{RegisteredForms: r.Registered(), SaveTime: saveTime}
}

// Restore replaces the registered set and recomputes buffs. Ids missing
// from the current tables are kept so a later table reload can honor them.
func (r *Registry) Restore(doc Document) {
	r.registered = make(map[int]bool, len(doc.RegisteredForms))
	for _, id := range doc.RegisteredForms {
		if _, ok := r.tables.Form(id); !ok {
			r.log.Printf("collection: restored form %d is not in the current tables", id)
		}
		r.registered[id] = true
	}
	r.RecomputeBuffs()
}
