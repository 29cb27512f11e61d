package growth

import "github.com/xtding233/nurture-economy/internal/game"

// CreatureRecord is one persisted creature row.
type CreatureRecord struct {
	EggID    int    `json:"eggId"`
	Type     string `json:"type"`
	Level    int    `json:"level"`
	Power    int    `json:"power"`
	Wisdom   int    `json:"wisdom"`
	Agility  int    `json:"agility"`
	Charm    int    `json:"charm"`
	Vitality int    `json:"vitality"`
}

type HistoryRecord struct {
	EggID   int            `json:"eggId"`
	Entries []HistoryEntry `json:"entries"`
}

// Document is the growth_action_data.json payload.
type Document struct {
	Creatures        []CreatureRecord `json:"creatures"`
	Histories        []HistoryRecord  `json:"histories"`
	CurrentSessionID int              `json:"currentSessionId"`
	SaveTime         int64            `json:"saveTime"`
}

// Snapshot captures every creature in id order.
func (o *Orchestrator) Snapshot(saveTime int64) Document {
	doc := Document{
		Creatures:        []CreatureRecord{},
		Histories:        []HistoryRecord{},
		CurrentSessionID: o.sessionID,
		SaveTime:         saveTime,
	}
	for _, id := range o.CreatureIDs() {
		c := o.creatures[id]
		doc.Creatures = append(doc.Creatures, CreatureRecord{
			EggID:    c.ID,
			Type:     c.Type,
			Level:    c.Level,
			Power:    c.Stats[Power],
			Wisdom:   c.Stats[Wisdom],
			Agility:  c.Stats[Agility],
			Charm:    c.Stats[Charm],
			Vitality: c.Stats[Vitality],
		})
		if len(c.History) > 0 {
			doc.Histories = append(doc.Histories, HistoryRecord{
				EggID:   c.ID,
				Entries: append([]HistoryEntry(nil), c.History...),
			})
		}
	}
	return doc
}

// Restore replaces all creatures. Levels below 1 become 1, negative stats
// become 0 and histories are trimmed to the newest entries.
func (o *Orchestrator) Restore(doc Document) {
	o.creatures = make(map[int]*Creature, len(doc.Creatures))
	for _, r := range doc.Creatures {
		c := &Creature{
			ID:    r.EggID,
			Type:  game.NormalizeType(r.Type),
			Level: max(1, r.Level),
			Stats: Stats{max(0, r.Power), max(0, r.Wisdom), max(0, r.Agility), max(0, r.Charm), max(0, r.Vitality)},
		}
		o.creatures[c.ID] = c
	}
	limit := o.historyLimit()
	for _, h := range doc.Histories {
		c, ok := o.creatures[h.EggID]
		if !ok {
			o.log.Printf("growth: restore dropped history for unknown creature %d", h.EggID)
			continue
		}
		entries := h.Entries
		if len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}
		c.History = append([]HistoryEntry(nil), entries...)
	}
	o.sessionID = max(1, doc.CurrentSessionID)
}
