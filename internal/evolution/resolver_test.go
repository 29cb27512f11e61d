package evolution

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/xtding233/nurture-economy/internal/collection"
	"github.com/xtding233/nurture-economy/internal/currency"
	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game/gametest"
	"github.com/xtding233/nurture-economy/internal/growth"
	"github.com/xtding233/nurture-economy/internal/weighted"
)

type fixture struct {
	ch       *event.Channel
	ledger   *currency.Ledger
	orch     *growth.Orchestrator
	registry *collection.Registry
	resolver *Resolver
}

func newFixture(t *testing.T, rng weighted.RandomSource) *fixture {
	t.Helper()
	tables := gametest.Tables(t)
	logger := log.New(io.Discard, "", 0)
	f := &fixture{ch: event.New()}
	f.ledger = currency.NewLedger(tables, f.ch, logger)
	f.registry = collection.New(tables, f.ledger, f.ch, logger)
	f.ledger.UseBuffs(f.registry)
	f.orch = growth.New(tables, f.ledger, f.ch, growth.Options{Logger: logger, Seeds: weighted.NewSeededRNG(1)})
	f.resolver = New(tables, f.orch, f.registry, f.ch, Options{Logger: logger, RNG: rng})
	return f
}

func TestCheckCondition(t *testing.T) {
	f := newFixture(t, nil)
	if c := f.resolver.CheckCondition(1, 4); c.CanEvolve || c.RequiredLevel != 5 || c.ErrorMessage == "" {
		t.Fatalf("level 4: %+v", c)
	}
	if c := f.resolver.CheckCondition(1, 5); !c.CanEvolve {
		t.Fatalf("level 5 should evolve")
	}
	f.resolver.SetRequiredLevel(1, 8)
	if c := f.resolver.CheckCondition(1, 7); c.CanEvolve || c.RequiredLevel != 8 {
		t.Fatalf("override ignored: %+v", c)
	}
	f.resolver.SetRequiredLevel(1, 0)
	if f.resolver.RequiredLevel(1) != 5 {
		t.Fatalf("override not cleared")
	}
}

func TestDetermineFormBoundaryRolls(t *testing.T) {
	// rolls are Float64()*total, so 0 and the value just below 1 hit the edges
	first := newFixture(t, &weighted.Fixed{Values: []float64{0}})
	first.orch.EnsureCreature(1, "blue")
	form, ok := first.resolver.DetermineForm(1, "blue", 5, growth.Stats{9, 1, 0, 0, 0})
	if !ok || form.ID != 100 {
		t.Fatalf("roll 0 -> %+v %v, want form 100", form, ok)
	}

	last := newFixture(t, &weighted.Fixed{Values: []float64{0.9999999}})
	last.orch.EnsureCreature(1, "blue")
	form, ok = last.resolver.DetermineForm(1, "blue", 5, growth.Stats{9, 1, 0, 0, 0})
	if !ok || form.ID != 101 {
		t.Fatalf("top roll -> %+v %v, want form 101", form, ok)
	}
}

func TestDetermineFormTierSelection(t *testing.T) {
	f := newFixture(t, weighted.NewSeededRNG(3))
	f.orch.EnsureCreature(1, "blue")
	power := growth.Stats{9, 0, 0, 0, 0}

	// level 12 qualifies for both power tiers; the tighter (10) wins
	if form, ok := f.resolver.DetermineForm(1, "blue", 12, power); !ok || form.ID != 102 {
		t.Fatalf("level 12 -> %d %v, want 102", form.ID, ok)
	}
	// an unowned creature is treated as unbounded level
	if form, ok := f.resolver.DetermineForm(77, "blue", 1, power); !ok || form.ID != 102 {
		t.Fatalf("unowned -> %d %v, want 102", form.ID, ok)
	}
	// owned creature below every tier
	if _, ok := f.resolver.DetermineForm(1, "blue", 4, power); ok {
		t.Fatalf("level 4 must not match")
	}
	// all-zero probabilities select nothing
	if _, ok := f.resolver.DetermineForm(1, "blue", 5, growth.Stats{0, 0, 0, 0, 3}); ok {
		t.Fatalf("zero-sum row must not match")
	}
	// agility has no rules
	if _, ok := f.resolver.DetermineForm(1, "blue", 5, growth.Stats{0, 0, 3, 0, 0}); ok {
		t.Fatalf("agility must not match")
	}
}

func TestDetermineFormDistribution(t *testing.T) {
	f := newFixture(t, weighted.NewSeededRNG(11))
	f.orch.EnsureCreature(1, "blue")
	counts := map[int]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		form, ok := f.resolver.DetermineForm(1, "blue", 5, growth.Stats{9, 0, 0, 0, 0})
		if !ok {
			t.Fatalf("no form")
		}
		counts[form.ID]++
	}
	if len(counts) != 2 || counts[100]+counts[101] != n {
		t.Fatalf("unexpected forms %v", counts)
	}
	share := float64(counts[100]) / n
	if share < 0.58 || share > 0.62 {
		t.Fatalf("form 100 share %f, want ~0.6", share)
	}
}

func TestAttemptEvolutionLevelTooLow(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.EnsureCreature(1, "blue")
	var failed event.EvolutionFailed
	attempted := 0
	event.Subscribe(f.ch, func(event.EvolutionAttempted) { attempted++ })
	event.Subscribe(f.ch, func(e event.EvolutionFailed) { failed = e })

	res := f.resolver.AttemptEvolution(1, 3, growth.Stats{5, 0, 0, 0, 0})
	if res.Success || !errors.Is(res.Err, ErrLevelTooLow) {
		t.Fatalf("result %+v", res)
	}
	if attempted != 1 || failed.MissingLevel != 2 || failed.Reason != ReasonLevelTooLow {
		t.Fatalf("attempted=%d failed=%+v", attempted, failed)
	}
	if f.resolver.Stage(1) != 0 || len(f.resolver.History(1)) != 0 {
		t.Fatalf("failed attempt recorded state")
	}
}

func TestAttemptEvolutionCompletesAndRegisters(t *testing.T) {
	f := newFixture(t, &weighted.Fixed{Values: []float64{0}})
	f.orch.EnsureCreature(1, "blue")
	stats := growth.Stats{9, 2, 0, 0, 0}
	f.orch.SetStats(1, stats)
	var completed event.EvolutionCompleted
	event.Subscribe(f.ch, func(e event.EvolutionCompleted) { completed = e })

	res := f.resolver.AttemptEvolution(1, 6, stats)
	if !res.Success || res.FormID != 100 || !res.IsNewForm || res.Stage != 1 {
		t.Fatalf("result %+v", res)
	}
	if res.FinalStats != stats || completed.FormID != 100 || completed.Stats != [5]int(stats) {
		t.Fatalf("final stats / event mismatch: %+v %+v", res, completed)
	}
	if !f.registry.IsRegistered(100) {
		t.Fatalf("form not registered")
	}
	// the resolver does not reset; that is the caller's second step
	if c, _ := f.orch.Creature(1); c.Stats != stats {
		t.Fatalf("creature reset too early")
	}

	again := f.resolver.AttemptEvolution(1, 6, stats)
	if !again.Success || again.IsNewForm || again.DuplicateReward != 30 || again.Stage != 2 {
		t.Fatalf("duplicate result %+v", again)
	}
	if h := f.resolver.History(1); len(h) != 2 {
		t.Fatalf("history %d", len(h))
	}
}

func TestEvolveAndReset(t *testing.T) {
	f := newFixture(t, &weighted.Fixed{Values: []float64{0}})
	f.orch.EnsureCreature(1, "red")
	f.orch.SetStats(1, growth.Stats{4, 0, 0, 0, 0})
	f.resolver.SetRequiredLevel(1, 1)

	res := f.resolver.EvolveAndReset(1)
	if !res.Success || res.FormID != 103 {
		t.Fatalf("result %+v", res)
	}
	c, _ := f.orch.Creature(1)
	if c.Level != 1 || c.Stats != (growth.Stats{}) {
		t.Fatalf("creature not reset: %+v", c)
	}
	if res := f.resolver.EvolveAndReset(404); res.Success || !errors.Is(res.Err, ErrCreatureNotFound) {
		t.Fatalf("unknown creature: %+v", res)
	}
}

func TestAttemptEvolutionNoForm(t *testing.T) {
	f := newFixture(t, nil)
	f.orch.EnsureCreature(1, "blue")
	res := f.resolver.AttemptEvolution(1, 5, growth.Stats{0, 0, 7, 0, 0})
	if res.Success || !errors.Is(res.Err, ErrNoMatchingForm) {
		t.Fatalf("result %+v", res)
	}
	if f.resolver.Stage(1) != 0 {
		t.Fatalf("stage advanced without a form")
	}
}

func TestEvolutionHistoryBoundAndRestore(t *testing.T) {
	f := newFixture(t, weighted.NewSeededRNG(5))
	f.orch.EnsureCreature(1, "red")
	f.resolver.SetRequiredLevel(1, 2)
	for i := 0; i < 60; i++ {
		if res := f.resolver.AttemptEvolution(1, 3, growth.Stats{4, 0, 0, 0, 0}); !res.Success {
			t.Fatalf("attempt %d: %s", i, res.ErrorMessage)
		}
	}
	if got := len(f.resolver.History(1)); got != 50 {
		t.Fatalf("history %d, want 50", got)
	}
	doc := f.resolver.Snapshot(9)

	g := newFixture(t, nil)
	g.resolver.Restore(doc)
	if g.resolver.Stage(1) != 60 || len(g.resolver.History(1)) != 50 || g.resolver.RequiredLevel(1) != 2 {
		t.Fatalf("restore lost state")
	}
}

func TestEvolveLeavesCreatureAsIs(t *testing.T) {
	f := newFixture(t, &weighted.Fixed{Values: []float64{0}})
	f.orch.EnsureCreature(1, "red")
	f.orch.SetStats(1, growth.Stats{4, 0, 0, 0, 0})
	f.resolver.SetRequiredLevel(1, 1)

	if res := f.resolver.Evolve(1); !res.Success || res.FormID != 103 {
		t.Fatalf("result %+v", res)
	}
	if c, _ := f.orch.Creature(1); c.Stats != (growth.Stats{4, 0, 0, 0, 0}) {
		t.Fatalf("evolve reset the creature: %+v", c)
	}

	var failed event.EvolutionFailed
	event.Subscribe(f.ch, func(e event.EvolutionFailed) { failed = e })
	res := f.resolver.Evolve(404)
	if res.Success || !errors.Is(res.Err, ErrCreatureNotFound) || failed.Reason != ReasonNoCreature {
		t.Fatalf("unknown creature: %+v %+v", res, failed)
	}
}
