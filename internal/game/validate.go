package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var ErrInvalidTables = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of merged tables.
func ValidateRaw(cfg RawTables) error {
	var errs []string
	s := applySettings(cfg.Settings)

	if s.DefaultRequiredLevel < 1 {
		errs = append(errs, "settings.default_required_level must be >= 1")
	}
	if s.HistoryLimit < 1 {
		errs = append(errs, "settings.history_limit must be >= 1")
	}
	if s.EvolutionHistoryLimit < 1 {
		errs = append(errs, "settings.evolution_history_limit must be >= 1")
	}
	if s.AvailableActionCount < 0 {
		errs = append(errs, "settings.available_action_count must be >= 0")
	}

	// currencies
	currencyIDs := map[int]bool{}
	types := map[string]bool{}
	commonFound := false
	for i, c := range cfg.Currencies {
		if c.ID <= 0 {
			errs = append(errs, fmt.Sprintf("currencies[%d].id must be > 0", i))
		}
		if currencyIDs[c.ID] {
			errs = append(errs, fmt.Sprintf("currencies[%d]: duplicate id %d", i, c.ID))
		}
		currencyIDs[c.ID] = true
		if !(c.RarityMultiplier > 0) {
			errs = append(errs, fmt.Sprintf("currencies[%d].rarity_multiplier must be > 0", i))
		}
		tag := NormalizeType(c.TypeTag)
		switch {
		case tag == "":
			errs = append(errs, fmt.Sprintf("currencies[%d].type_tag is required", i))
		case tag == CommonTag:
			if c.ID == s.CommonCurrencyID {
				commonFound = true
			}
		default:
			if types[tag] {
				errs = append(errs, fmt.Sprintf("currencies[%d]: type %q already has a special currency", i, tag))
			}
			types[tag] = true
		}
	}
	if !commonFound {
		errs = append(errs, fmt.Sprintf("settings.common_currency_id %d must name a currency tagged %q", s.CommonCurrencyID, CommonTag))
	}

	// forms may introduce creature types without a special currency
	for _, f := range cfg.Forms {
		if t := NormalizeType(f.CreatureType); t != "" {
			types[t] = true
		}
	}
	knownTypes := sortedKeys(types)

	// actions
	actionIDs := map[int]bool{}
	for _, a := range cfg.Actions {
		actionIDs[a.ID] = true
	}
	seenActions := map[int]bool{}
	for i, a := range cfg.Actions {
		p := fmt.Sprintf("actions[%d]", i)
		if a.ID <= 0 {
			errs = append(errs, p+".id must be > 0")
		}
		if seenActions[a.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate id %d", p, a.ID))
		}
		seenActions[a.ID] = true
		if a.MinLevel < 1 || a.MaxLevel < a.MinLevel {
			errs = append(errs, p+" must satisfy 1 <= min_level <= max_level")
		}
		if a.CostCommon < 0 || a.CostSpecial < 0 {
			errs = append(errs, p+" costs must be >= 0")
		}
		if a.Weight < 0 {
			errs = append(errs, p+".weight must be >= 0")
		}
		if a.CooldownTurns < 0 {
			errs = append(errs, p+".cooldown_turns must be >= 0")
		}
		for j, e := range a.Effects {
			if StatIndex(e.Stat) < 0 {
				errs = append(errs, fmt.Sprintf("%s.effects[%d]: unknown stat %q%s", p, j, e.Stat, suggest(e.Stat, StatNames[:])))
			}
		}
		for _, x := range a.ExclusiveWith {
			if !actionIDs[x] {
				errs = append(errs, fmt.Sprintf("%s.exclusive_with: unknown action %d", p, x))
			}
		}
	}

	// forms
	formIDs := map[int]bool{}
	for i, f := range cfg.Forms {
		p := fmt.Sprintf("forms[%d]", i)
		if f.ID <= 0 {
			errs = append(errs, p+".id must be > 0")
		}
		if formIDs[f.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate id %d", p, f.ID))
		}
		formIDs[f.ID] = true
		if NormalizeType(f.CreatureType) == "" {
			errs = append(errs, p+".creature_type is required")
		}
		switch f.BuffType {
		case "", BuffNone, BuffCommonCurrencyGain, BuffSpecialCurrencyGain, BuffDuplicateRewardBonus:
		default:
			errs = append(errs, fmt.Sprintf("%s.buff_type must be one of: none, common_currency_gain, special_currency_gain, duplicate_reward_bonus", p))
		}
		if f.BuffValuePercent < 0 {
			errs = append(errs, p+".buff_value_percent must be >= 0")
		}
		if f.BuffTargetType != "" && !types[NormalizeType(f.BuffTargetType)] {
			errs = append(errs, fmt.Sprintf("%s.buff_target_type: unknown type %q%s", p, f.BuffTargetType, suggest(f.BuffTargetType, knownTypes)))
		}
		if f.DuplicateRewardAmount < 0 {
			errs = append(errs, p+".duplicate_reward_amount must be >= 0")
		}
	}

	// evolution rules
	for i, r := range cfg.Rules {
		p := fmt.Sprintf("evolution_rules[%d]", i)
		if !types[NormalizeType(r.CreatureType)] {
			errs = append(errs, fmt.Sprintf("%s.creature_type: unknown type %q%s", p, r.CreatureType, suggest(r.CreatureType, knownTypes)))
		}
		if StatIndex(r.DominantStat) < 0 {
			errs = append(errs, fmt.Sprintf("%s.dominant_stat: unknown stat %q%s", p, r.DominantStat, suggest(r.DominantStat, StatNames[:])))
		}
		if r.MinNurtureLevel < 0 {
			errs = append(errs, p+".min_nurture_level must be >= 0")
		}
		if len(r.Outcomes) == 0 {
			errs = append(errs, p+".outcomes must not be empty")
		}
		for j, o := range r.Outcomes {
			if !formIDs[o.FormID] {
				errs = append(errs, fmt.Sprintf("%s.outcomes[%d]: unknown form %d", p, j, o.FormID))
			}
		}
		// rows are expected, not required, to sum to 100
	}

	for rank, amount := range cfg.RankRewards {
		if amount < 0 {
			errs = append(errs, fmt.Sprintf("rank_rewards[%s] must be >= 0", rank))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTables, strings.Join(errs, "; "))
	}
	return nil
}

// suggest returns a ` (did you mean "x"?)` hint for near-miss names.
func suggest(got string, candidates []string) string {
	needle := NormalizeType(got)
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > 2 || bestDist >= len(needle) {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
