package journal

import (
	"log"
	"time"

	"github.com/xtding233/nurture-economy/internal/event"
)

// Entry is one journal line.
type Entry struct {
	Type  string    `json:"type"`
	At    time.Time `json:"at"`
	Event any       `json:"event"`
}

// Sink receives journal entries. *Writer satisfies it.
type Sink interface {
	Write(v any) error
}

// Attachment holds the subscriptions made by Attach.
type Attachment struct {
	subs []event.Subscription
}

// Detach drops every subscription. Safe on a nil receiver.
func (a *Attachment) Detach() {
	if a == nil {
		return
	}
	for _, s := range a.subs {
		s.Unsubscribe()
	}
	a.subs = nil
}

func record[T any](a *Attachment, ch *event.Channel, sink Sink, logger *log.Logger, name string) {
	a.subs = append(a.subs, event.Subscribe(ch, func(ev T) {
		if err := sink.Write(Entry{Type: name, At: time.Now().UTC(), Event: ev}); err != nil {
			logger.Printf("journal: write %s: %v", name, err)
		}
	}))
}

// Attach journals every event type published on ch. Write errors are
// logged and never reach the publisher.
func Attach(ch *event.Channel, sink Sink, logger *log.Logger) *Attachment {
	if logger == nil {
		logger = log.Default()
	}
	a := &Attachment{}
	record[event.CurrencyGained](a, ch, sink, logger, "currency_gained")
	record[event.CurrencySpent](a, ch, sink, logger, "currency_spent")
	record[event.CurrencyBalanceChanged](a, ch, sink, logger, "currency_balance_changed")
	record[event.StatChanged](a, ch, sink, logger, "stat_changed")
	record[event.LevelChanged](a, ch, sink, logger, "level_changed")
	record[event.GrowthActionPerformed](a, ch, sink, logger, "growth_action_performed")
	record[event.EvolutionAttempted](a, ch, sink, logger, "evolution_attempted")
	record[event.EvolutionCompleted](a, ch, sink, logger, "evolution_completed")
	record[event.EvolutionFailed](a, ch, sink, logger, "evolution_failed")
	record[event.FormRegistered](a, ch, sink, logger, "form_registered")
	record[event.DuplicateFormProcessed](a, ch, sink, logger, "duplicate_form_processed")
	return a
}
