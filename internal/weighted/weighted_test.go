package weighted

import (
	"math"
	"reflect"
	"testing"

	"github.com/xtding233/nurture-economy/internal/game"
)

func act(id, minL, maxL, weight int, exclusive ...int) game.ActionDef {
	return game.ActionDef{ID: id, MinLevel: minL, MaxLevel: maxL, Weight: weight, ExclusiveWith: exclusive}
}

func ids(as []game.ActionDef) []int {
	out := make([]int, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestWalkInclusiveBoundaries(t *testing.T) {
	w := []float64{0, 60, 40}
	if got := Walk(w, 0); got != 1 {
		t.Fatalf("roll=0 -> %d, want first positive entry 1", got)
	}
	if got := Walk(w, 60); got != 1 {
		t.Fatalf("roll=60 -> %d, want 1 (inclusive)", got)
	}
	if got := Walk(w, 60.0001); got != 2 {
		t.Fatalf("roll just past 60 -> %d, want 2", got)
	}
	if got := Walk(w, Total(w)); got != 2 {
		t.Fatalf("roll=total -> %d, want last entry", got)
	}
	if got := Walk(w, 100.5); got != -1 {
		t.Fatalf("roll past total -> %d, want -1", got)
	}
	if got := Walk([]float64{0, -3}, 0); got != -1 {
		t.Fatalf("non-positive total must select nothing, got %d", got)
	}
	for _, roll := range []float64{-1, math.NaN(), math.Inf(1)} {
		if got := Walk(w, roll); got != -1 {
			t.Fatalf("roll=%v -> %d, want -1", roll, got)
		}
	}
}

func TestRollUsesSourceScale(t *testing.T) {
	w := []float64{60, 40}
	if got := Roll(w, &Fixed{Values: []float64{0}}); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := Roll(w, &Fixed{Values: []float64{0.7}}); got != 1 {
		t.Fatalf("got %d", got)
	}
}

func TestPickDeterministic(t *testing.T) {
	pool := []game.ActionDef{act(1, 1, 10, 5), act(2, 1, 10, 3), act(3, 1, 10, 1), act(4, 1, 10, 7), act(5, 1, 10, 2)}
	for seed := uint64(0); seed < 50; seed++ {
		a := Pick(pool, 5, 3, nil, seed)
		b := Pick(pool, 5, 3, nil, seed)
		if !reflect.DeepEqual(ids(a), ids(b)) {
			t.Fatalf("seed %d: %v != %v", seed, ids(a), ids(b))
		}
		if len(a) != 3 {
			t.Fatalf("seed %d: want 3 picks, got %d", seed, len(a))
		}
		seen := map[int]bool{}
		for _, x := range a {
			if seen[x.ID] {
				t.Fatalf("seed %d: duplicate pick %d", seed, x.ID)
			}
			seen[x.ID] = true
		}
	}
}

func TestPickExclusivePairNeverBoth(t *testing.T) {
	pool := []game.ActionDef{act(1, 1, 10, 1), act(2, 1, 10, 1, 1)}
	got := Pick(pool, 5, 2, nil, 42)
	if len(got) != 1 {
		t.Fatalf("want exactly one pick, got %v", ids(got))
	}
	for seed := uint64(0); seed < 200; seed++ {
		if got := Pick(pool, 5, 2, nil, seed); len(got) != 1 {
			t.Fatalf("seed %d returned %v", seed, ids(got))
		}
	}
}

func TestPickFiltersLevelWeightCooldown(t *testing.T) {
	cool := act(4, 1, 10, 1)
	cool.CooldownTurns = 2
	noCool := act(5, 1, 10, 1)
	pool := []game.ActionDef{act(1, 6, 10, 1), act(2, 1, 4, 1), act(3, 1, 10, 0), cool, noCool}
	recent := map[int]bool{4: true, 5: true}

	got := Pick(pool, 5, 10, recent, 1)
	if !reflect.DeepEqual(ids(got), []int{5}) {
		t.Fatalf("got %v, want [5] (recent ignored without cooldown)", ids(got))
	}
	if got := Pick(pool, 5, 0, nil, 1); got != nil {
		t.Fatalf("count 0 must return nil")
	}
}

func TestSimulateConverges(t *testing.T) {
	d := Simulate([]float64{60, 40}, 20000, NewSeededRNG(7))
	if d.Misses != 0 {
		t.Fatalf("misses=%d", d.Misses)
	}
	if diff := d.Shares[0] - 0.6; diff > 0.02 || diff < -0.02 {
		t.Fatalf("share %f not close to 0.6", d.Shares[0])
	}
}
