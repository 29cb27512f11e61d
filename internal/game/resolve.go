// resolve.go
package game

import "sort"

// Tables is the validated, indexed form of RawTables handed to the services.
// Treat it as read-only once built; hot reload swaps in a new *Tables.
type Tables struct {
	Version  string
	Settings Settings

	currencies  map[int]CurrencyDef
	specialByTy map[string]int
	actions     map[int]ActionDef
	actionOrder []int
	forms       map[int]FormDef
	rules       []RuleRow
	rankRewards map[string]int
}

// Normalize validates raw and builds lookup indexes.
func Normalize(raw RawTables) (*Tables, error) {
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}
	t := &Tables{
		Version:     raw.Version,
		Settings:    applySettings(raw.Settings),
		currencies:  make(map[int]CurrencyDef, len(raw.Currencies)),
		specialByTy: make(map[string]int),
		actions:     make(map[int]ActionDef, len(raw.Actions)),
		forms:       make(map[int]FormDef, len(raw.Forms)),
		rankRewards: make(map[string]int, len(raw.RankRewards)),
	}
	for _, c := range raw.Currencies {
		c.TypeTag = NormalizeType(c.TypeTag)
		t.currencies[c.ID] = c
		if c.TypeTag != CommonTag {
			t.specialByTy[c.TypeTag] = c.ID
		}
	}
	for _, a := range raw.Actions {
		a.ExclusiveWith = append([]int(nil), a.ExclusiveWith...)
		a.Effects = append([]StatDelta(nil), a.Effects...)
		t.actions[a.ID] = a
		t.actionOrder = append(t.actionOrder, a.ID)
	}
	sort.Ints(t.actionOrder)
	for _, f := range raw.Forms {
		if f.BuffType == "" {
			f.BuffType = BuffNone
		}
		t.forms[f.ID] = f
	}
	for _, r := range raw.Rules {
		r.CreatureType = NormalizeType(r.CreatureType)
		r.DominantStat = StatNames[StatIndex(r.DominantStat)]
		r.Outcomes = append([]Outcome(nil), r.Outcomes...)
		t.rules = append(t.rules, r)
	}
	for k, v := range raw.RankRewards {
		t.rankRewards[k] = v
	}
	return t, nil
}

func applySettings(c SettingsConfig) Settings {
	s := DefaultSettings()
	if c.CommonCurrencyID != nil {
		s.CommonCurrencyID = *c.CommonCurrencyID
	}
	if c.DefaultRequiredLevel != nil {
		s.DefaultRequiredLevel = *c.DefaultRequiredLevel
	}
	if c.HistoryLimit != nil {
		s.HistoryLimit = *c.HistoryLimit
	}
	if c.EvolutionHistoryLimit != nil {
		s.EvolutionHistoryLimit = *c.EvolutionHistoryLimit
	}
	if c.AvailableActionCount != nil {
		s.AvailableActionCount = *c.AvailableActionCount
	}
	return s
}

func (t *Tables) Currency(id int) (CurrencyDef, bool) {
	c, ok := t.currencies[id]
	return c, ok
}

// SpecialCurrencyID resolves the special pool owned by creatureType.
func (t *Tables) SpecialCurrencyID(creatureType string) (int, bool) {
	id, ok := t.specialByTy[NormalizeType(creatureType)]
	return id, ok
}

// CurrencyIDs returns every known currency id in ascending order.
func (t *Tables) CurrencyIDs() []int {
	ids := make([]int, 0, len(t.currencies))
	for id := range t.currencies {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (t *Tables) Action(id int) (ActionDef, bool) {
	a, ok := t.actions[id]
	return a, ok
}

// ActionPool returns all actions ordered by id, the order the selector walks.
func (t *Tables) ActionPool() []ActionDef {
	out := make([]ActionDef, 0, len(t.actionOrder))
	for _, id := range t.actionOrder {
		out = append(out, t.actions[id])
	}
	return out
}

func (t *Tables) Form(id int) (FormDef, bool) {
	f, ok := t.forms[id]
	return f, ok
}

// FormCount is the number of collectible forms.
func (t *Tables) FormCount() int { return len(t.forms) }

// Rules returns the rule rows for (creatureType, dominantStat) in table order.
func (t *Tables) Rules(creatureType, dominantStat string) []RuleRow {
	ty := NormalizeType(creatureType)
	var out []RuleRow
	for _, r := range t.rules {
		if r.CreatureType == ty && r.DominantStat == dominantStat {
			out = append(out, r)
		}
	}
	return out
}

// RankReward is the base special-currency reward for a run rank; 0 if unknown.
func (t *Tables) RankReward(rank string) int {
	return t.rankRewards[rank]
}
