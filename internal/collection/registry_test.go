package collection

import (
	"io"
	"log"
	"reflect"
	"testing"

	"github.com/xtding233/nurture-economy/internal/currency"
	"github.com/xtding233/nurture-economy/internal/event"
	"github.com/xtding233/nurture-economy/internal/game/gametest"
)

func newRegistry(t *testing.T) (*Registry, *currency.Ledger, *event.Channel) {
	t.Helper()
	tables := gametest.Tables(t)
	ch := event.New()
	logger := log.New(io.Discard, "", 0)
	ledger := currency.NewLedger(tables, ch, logger)
	reg := New(tables, ledger, ch, logger)
	ledger.UseBuffs(reg)
	return reg, ledger, ch
}

func TestRegisterOnlyOnce(t *testing.T) {
	reg, ledger, ch := newRegistry(t)
	registered, duplicates := 0, 0
	event.Subscribe(ch, func(event.FormRegistered) { registered++ })
	event.Subscribe(ch, func(event.DuplicateFormProcessed) { duplicates++ })

	if !reg.Register(100) {
		t.Fatalf("first register must return true")
	}
	for i := 0; i < 3; i++ {
		if reg.Register(100) {
			t.Fatalf("repeat register returned true")
		}
	}
	if registered != 1 || duplicates != 3 {
		t.Fatalf("registered=%d duplicates=%d", registered, duplicates)
	}
	// form 100 pays 30 blue per duplicate
	if got := ledger.Amount(gametest.Blue); got != 90 {
		t.Fatalf("blue balance %d, want 90", got)
	}
	if reg.Count() != 1 || !reg.IsRegistered(100) {
		t.Fatalf("registry state wrong")
	}
	if reg.Register(999) {
		t.Fatalf("unknown form registered")
	}
}

func TestRecomputeBuffsAdditive(t *testing.T) {
	reg, _, _ := newRegistry(t)
	reg.Register(100) // common +10
	reg.Register(101) // common +5
	if got := reg.CommonBuffPercent(); got != 15 {
		t.Fatalf("common buff %d, want 15", got)
	}
	// recomputing again must not double count
	reg.RecomputeBuffs()
	reg.RecomputeBuffs()
	if got := reg.CommonBuffPercent(); got != 15 {
		t.Fatalf("common buff drifted to %d", got)
	}
}

func TestSpecialBuffTargets(t *testing.T) {
	reg, _, _ := newRegistry(t)
	reg.Register(102) // blue special +20, own type
	reg.Register(104) // red form, special +25 targeted at Blue
	reg.Register(105) // none
	if got := reg.SpecialBuffPercent("BLUE"); got != 45 {
		t.Fatalf("blue special buff %d, want 45", got)
	}
	if got := reg.SpecialBuffPercent("red"); got != 0 {
		t.Fatalf("red special buff %d, want 0", got)
	}
}

func TestDuplicateRewardBuffed(t *testing.T) {
	reg, ledger, ch := newRegistry(t)
	var last event.DuplicateFormProcessed
	event.Subscribe(ch, func(e event.DuplicateFormProcessed) { last = e })

	reg.Register(103) // duplicate bonus +50, red, 40 per duplicate
	if got := reg.ProcessDuplicate(103); got != 60 {
		t.Fatalf("credited %d, want 60", got)
	}
	if ledger.Amount(gametest.Red) != 60 {
		t.Fatalf("red balance %d", ledger.Amount(gametest.Red))
	}
	if last.FormID != 103 || last.CurrencyID != gametest.Red || last.Amount != 60 {
		t.Fatalf("event %+v", last)
	}
	if got := reg.ProcessDuplicate(105); got != 0 {
		t.Fatalf("zero-reward form credited %d", got)
	}
}

func TestBuffsFeedRunningReward(t *testing.T) {
	reg, ledger, _ := newRegistry(t)
	reg.Register(100)
	reg.Register(101)
	res := ledger.ProcessRunningReward(currency.RunContext{Cleared: true, Score: 200, Rank: "B", CreatureType: "blue", CreatureID: currency.NoCreature})
	if res.CommonGained != 230 {
		t.Fatalf("common gained %d, want 230", res.CommonGained)
	}
}

func TestSnapshotRestoreRecomputes(t *testing.T) {
	reg, _, _ := newRegistry(t)
	reg.Register(101)
	reg.Register(100)
	doc := reg.Snapshot(5)
	if !reflect.DeepEqual(doc.RegisteredForms, []int{100, 101}) {
		t.Fatalf("snapshot %v", doc.RegisteredForms)
	}

	other, _, _ := newRegistry(t)
	other.Restore(doc)
	other.Restore(doc)
	if other.CommonBuffPercent() != 15 || other.Count() != 2 {
		t.Fatalf("restore buffs %d count %d", other.CommonBuffPercent(), other.Count())
	}
}
