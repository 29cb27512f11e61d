package currency

import (
	"fmt"
	"math"
)

// RunContext describes a finished run of the running minigame.
type RunContext struct {
	Cleared      bool
	Score        int
	Rank         string
	CreatureType string
	CreatureID   int // NoCreature when the run is not tied to one
}

// RunReward reports what ProcessRunningReward credited.
type RunReward struct {
	CommonGained  int      `json:"common_gained"`
	SpecialGained int      `json:"special_gained"`
	Sources       []string `json:"sources"`
}

// applyBuff returns floor(base * (1 + percent/100)) in integer math.
func applyBuff(base, percent int) int {
	if base <= 0 {
		return 0
	}
	// balances are 32-bit, so larger bases only saturate in Add anyway
	base = min(base, math.MaxInt32)
	if percent <= 0 {
		return base
	}
	percent = min(percent, math.MaxInt32)
	return base * (100 + percent) / 100
}

// ProcessRunningReward credits the score as common currency and the rank
// reward as the creature type's special currency, each raised by the
// collection buffs. Nothing happens unless the run was cleared with a
// positive score.
func (l *Ledger) ProcessRunningReward(rc RunContext) RunReward {
	var res RunReward
	if !rc.Cleared || rc.Score <= 0 {
		return res
	}
	creatureID := rc.CreatureID

	commonPct, specialPct := 0, 0
	if l.buffs != nil {
		commonPct = l.buffs.CommonBuffPercent()
		specialPct = l.buffs.SpecialBuffPercent(rc.CreatureType)
	}

	baseCommon := max(0, rc.Score)
	if amount := applyBuff(baseCommon, commonPct); amount > 0 {
		res.CommonGained = l.Add(l.CommonID(), amount, "running_score", creatureID)
		res.Sources = append(res.Sources, fmt.Sprintf("score:%d", baseCommon))
		if commonPct > 0 {
			res.Sources = append(res.Sources, fmt.Sprintf("common_buff:%d%%", commonPct))
		}
	}

	baseSpecial := 0
	if l.rewards != nil {
		baseSpecial = max(0, l.rewards(rc.Rank))
	}
	if amount := applyBuff(baseSpecial, specialPct); amount > 0 {
		sid, ok := l.SpecialCurrencyFor(rc.CreatureType)
		if !ok {
			l.log.Printf("currency: run reward: no special currency for type %q", rc.CreatureType)
			return res
		}
		res.SpecialGained = l.Add(sid, amount, "running_rank", creatureID)
		res.Sources = append(res.Sources, "rank:"+rc.Rank)
		if specialPct > 0 {
			res.Sources = append(res.Sources, fmt.Sprintf("special_buff:%d%%", specialPct))
		}
	}
	return res
}
