package weighted

import "github.com/xtding233/nurture-economy/internal/game"

// Pick draws up to count actions from pool without replacement.
//
// Candidates must satisfy MinLevel <= level <= MaxLevel, Weight > 0, and, for
// actions with a cooldown, must not appear in recent. Each draw removes the
// chosen action and every candidate it excludes; exclusivity is honored from
// either side's ExclusiveWith list. The PRNG is
// seeded once from seed, so equal inputs always give the same ordered result.
func Pick(pool []game.ActionDef, level, count int, recent map[int]bool, seed uint64) []game.ActionDef {
	if count <= 0 {
		return nil
	}
	candidates := make([]game.ActionDef, 0, len(pool))
	for _, a := range pool {
		if a.MinLevel > level || a.MaxLevel < level || a.Weight <= 0 {
			continue
		}
		if a.CooldownTurns > 0 && recent[a.ID] {
			continue
		}
		candidates = append(candidates, a)
	}

	rng := NewSeededRNG(seed)
	var out []game.ActionDef
	weights := make([]float64, 0, len(candidates))
	for len(out) < count && len(candidates) > 0 {
		weights = weights[:0]
		for _, a := range candidates {
			weights = append(weights, float64(a.Weight))
		}
		idx := Roll(weights, rng)
		if idx < 0 {
			// float rounding pushed the roll past the last bucket
			idx = len(candidates) - 1
		}
		chosen := candidates[idx]
		out = append(out, chosen)

		next := candidates[:0]
		for i, a := range candidates {
			if i == idx || chosen.ExcludesID(a.ID) || a.ExcludesID(chosen.ID) {
				continue
			}
			next = append(next, a)
		}
		candidates = next
	}
	return out
}
