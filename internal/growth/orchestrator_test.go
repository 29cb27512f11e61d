package growth

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/xtding233/nurture-economy/internal/currency"
	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game/gametest"
	"github.com/xtding233/nurture-economy/internal/weighted"
)

type fixture struct {
	ledger *currency.Ledger
	orch   *Orchestrator
	ch     *event.Channel
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tables := gametest.Tables(t)
	logger := log.New(io.Discard, "", 0)
	f := &fixture{ch: event.New(), now: time.Unix(1_700_000_000, 0)}
	f.ledger = currency.NewLedger(tables, f.ch, logger)
	f.orch = New(tables, f.ledger, f.ch, Options{
		Logger: logger,
		Now:    func() time.Time { return f.now },
		Seeds:  weighted.NewSeededRNG(1),
	})
	return f
}

func (f *fixture) fund(common, blue int) {
	if common > 0 {
		f.ledger.Add(gametest.Common, common, "test", currency.NoCreature)
	}
	if blue > 0 {
		f.ledger.Add(gametest.Blue, blue, "test", currency.NoCreature)
	}
}

func TestPerformActionAppliesEffects(t *testing.T) {
	f := newFixture(t)
	f.fund(100, 10)
	f.orch.EnsureCreature(1, "Blue")
	f.orch.SetStats(1, Stats{0, 0, 0, 0, 0})

	var stats []event.StatChanged
	var levels []event.LevelChanged
	performed := 0
	event.Subscribe(f.ch, func(e event.StatChanged) { stats = append(stats, e) })
	event.Subscribe(f.ch, func(e event.LevelChanged) { levels = append(levels, e) })
	event.Subscribe(f.ch, func(event.GrowthActionPerformed) { performed++ })

	res := f.orch.PerformAction(1, 2) // train: power +3, charm -1
	if !res.Success {
		t.Fatalf("perform failed: %s", res.ErrorMessage)
	}
	if res.NewLevel != 2 {
		t.Fatalf("new level %d", res.NewLevel)
	}
	c, _ := f.orch.Creature(1)
	if c.Stats[Power] != 3 || c.Stats[Charm] != 0 {
		t.Fatalf("stats %v: charm must clamp at 0", c.Stats)
	}
	if len(stats) != 2 || stats[1].Stat != "charm" || stats[1].New != 0 {
		t.Fatalf("stat events %+v", stats)
	}
	if len(levels) != 1 || levels[0].Reason != event.ReasonGrowthAction || levels[0].New != 2 {
		t.Fatalf("level events %+v", levels)
	}
	if performed != 1 {
		t.Fatalf("performed events %d", performed)
	}
	if f.ledger.Amount(gametest.Common) != 80 || f.ledger.Amount(gametest.Blue) != 5 {
		t.Fatalf("cost not charged")
	}
	if h := f.orch.History(1); len(h) != 1 || h[0].ActionID != 2 || h[0].SessionID != 1 {
		t.Fatalf("history %+v", h)
	}
}

func TestPerformActionValidationOrder(t *testing.T) {
	f := newFixture(t)
	f.orch.EnsureCreature(1, "blue")

	cases := []struct {
		name     string
		creature int
		action   int
		want     error
	}{
		{"missing creature", 9, 1, ErrCreatureNotFound},
		{"missing action", 1, 99, ErrActionNotFound},
		{"level too low", 1, 3, ErrLevelOutOfRange},
		{"unaffordable", 1, 1, ErrCannotAfford},
	}
	for _, tc := range cases {
		res := f.orch.PerformAction(tc.creature, tc.action)
		if res.Success || !errors.Is(res.Err, tc.want) || res.ErrorMessage == "" {
			t.Fatalf("%s: got %+v, want %v", tc.name, res, tc.want)
		}
	}
	c, _ := f.orch.Creature(1)
	if c.Level != 1 || len(c.History) != 0 {
		t.Fatalf("failed actions mutated creature: %+v", c)
	}
}

func TestPerformActionLevelCapAndHistoryBound(t *testing.T) {
	f := newFixture(t)
	f.fund(10_000, 0)
	f.orch.EnsureCreature(1, "blue")
	// feed is allowed up to level 10 inclusive, so ten steps reach level 11
	for i := 0; i < 10; i++ {
		if res := f.orch.PerformAction(1, 1); !res.Success {
			t.Fatalf("step %d: %s", i, res.ErrorMessage)
		}
	}
	if res := f.orch.PerformAction(1, 1); res.Success || !errors.Is(res.Err, ErrLevelOutOfRange) {
		t.Fatalf("level 11 must be outside feed's window: %+v", res)
	}

	f.orch.Restore(Document{Creatures: []CreatureRecord{{EggID: 2, Type: "blue", Level: 1}}})
	c := f.orch.creatures[2]
	for i := 0; i < 150; i++ {
		c.History = append(c.History, HistoryEntry{ActionID: 1, Timestamp: int64(i)})
	}
	if res := f.orch.PerformAction(2, 1); !res.Success {
		t.Fatalf("perform: %s", res.ErrorMessage)
	}
	h := f.orch.History(2)
	if len(h) != 100 {
		t.Fatalf("history length %d, want 100", len(h))
	}
	if h[len(h)-1].Timestamp != f.now.Unix() {
		t.Fatalf("newest entry must be last")
	}
}

func TestRecentCooldownIDs(t *testing.T) {
	f := newFixture(t)
	f.fund(1000, 0)
	f.orch.EnsureCreature(1, "blue")
	c := f.orch.creatures[1]
	c.Level = 3

	if res := f.orch.PerformAction(1, 3); !res.Success { // study, cooldown 2 turns
		t.Fatalf("perform: %s", res.ErrorMessage)
	}
	if res := f.orch.PerformAction(1, 1); !res.Success { // feed, no cooldown
		t.Fatalf("perform: %s", res.ErrorMessage)
	}
	recent := f.orch.RecentCooldownIDs(1)
	if !recent[3] || recent[1] {
		t.Fatalf("recent %v, want only 3", recent)
	}
	for _, a := range f.orch.AvailableActions(1, 5, 10) {
		if a.ID == 3 {
			t.Fatalf("action on cooldown offered")
		}
	}

	f.now = f.now.Add(2 * time.Minute)
	if recent := f.orch.RecentCooldownIDs(1); recent[3] {
		t.Fatalf("cooldown should expire after 2 units")
	}
}

func TestAvailableActionsDefaultCount(t *testing.T) {
	f := newFixture(t)
	f.orch.EnsureCreature(1, "blue")
	got := f.orch.AvailableActions(1, 5, 0)
	// feed and train are exclusive; study is selectable; nap has weight 0
	if len(got) == 0 || len(got) > 2 {
		t.Fatalf("got %d actions", len(got))
	}
	ids := map[int]bool{}
	for _, a := range got {
		ids[a.ID] = true
	}
	if ids[1] && ids[2] {
		t.Fatalf("exclusive actions offered together")
	}
	if ids[4] {
		t.Fatalf("zero-weight action offered")
	}
}

func TestResetStats(t *testing.T) {
	f := newFixture(t)
	f.fund(100, 0)
	f.orch.EnsureCreature(1, "blue")
	f.orch.PerformAction(1, 1)
	var last event.LevelChanged
	event.Subscribe(f.ch, func(e event.LevelChanged) { last = e })

	if !f.orch.ResetStats(1) {
		t.Fatalf("reset failed")
	}
	c, _ := f.orch.Creature(1)
	if c.Level != 1 || c.Stats != (Stats{}) || len(c.History) != 0 {
		t.Fatalf("creature not reset: %+v", c)
	}
	if last.Reason != event.ReasonEvolutionReset || last.Amount != 0 || last.Old != 2 {
		t.Fatalf("reset event %+v", last)
	}
	if f.orch.ResetStats(42) {
		t.Fatalf("reset of unknown creature succeeded")
	}
}

func TestDominantTieBreak(t *testing.T) {
	if got := (Stats{5, 5, 1, 0, 5}).Dominant(); got != Power {
		t.Fatalf("tie -> %v, want power", got)
	}
	if got := (Stats{1, 2, 9, 9, 3}).Dominant(); got != Agility {
		t.Fatalf("got %v, want agility", got)
	}
	if got := (Stats{}).Dominant(); got != Power {
		t.Fatalf("all zero -> %v", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.fund(100, 10)
	f.orch.EnsureCreature(1, "blue")
	f.orch.PerformAction(1, 2)
	f.orch.NewSession()
	doc := f.orch.Snapshot(123)

	g := newFixture(t)
	g.orch.Restore(doc)
	a, _ := f.orch.Creature(1)
	b, ok := g.orch.Creature(1)
	if !ok || a.Level != b.Level || a.Stats != b.Stats || len(b.History) != 1 || b.Type != "blue" {
		t.Fatalf("restored %+v, want %+v", b, a)
	}
	if g.orch.SessionID() != 2 {
		t.Fatalf("session id %d", g.orch.SessionID())
	}
	if !g.orch.RemoveCreature(1) || g.orch.RemoveCreature(1) {
		t.Fatalf("remove semantics wrong")
	}
}

func TestCooldownUsesSubSecondTime(t *testing.T) {
	f := newFixture(t)
	f.fund(1000, 0)
	f.orch.EnsureCreature(1, "blue")
	f.orch.creatures[1].Level = 3
	f.now = f.now.Add(900 * time.Millisecond)

	if res := f.orch.PerformAction(1, 3); !res.Success {
		t.Fatalf("perform: %s", res.ErrorMessage)
	}
	// 119.5s after the action, but 120.4s after its whole-second timestamp
	f.now = f.now.Add(119500 * time.Millisecond)
	if !f.orch.RecentCooldownIDs(1)[3] {
		t.Fatalf("cooldown ended before 2 units elapsed")
	}
	f.now = f.now.Add(500 * time.Millisecond)
	if f.orch.RecentCooldownIDs(1)[3] {
		t.Fatalf("cooldown should expire after exactly 2 units")
	}
}
