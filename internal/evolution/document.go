package evolution

import "sort"

type RequiredLevelRecord struct {
	EggID         int `json:"eggId"`
	RequiredLevel int `json:"requiredLevel"`
}

type HistoryRecord struct {
	EggID   int            `json:"eggId"`
	Entries []HistoryEntry `json:"entries"`
}

type StageRecord struct {
	EggID int `json:"eggId"`
	Stage int `json:"stage"`
}

// Document is the evolution_data.json payload.
type Document struct {
	RequiredLevels []RequiredLevelRecord `json:"requiredLevels"`
	Histories      []HistoryRecord       `json:"histories"`
	Stages         []StageRecord         `json:"stages"`
	SaveTime       int64                 `json:"saveTime"`
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *Resolver) Snapshot(saveTime int64) Document {
	doc := Document{
		RequiredLevels: []RequiredLevelRecord{},
		Histories:      []HistoryRecord{},
		Stages:         []StageRecord{},
		SaveTime:       saveTime,
	}
	for _, id := range sortedIDs(r.required) {
		doc.RequiredLevels = append(doc.RequiredLevels, RequiredLevelRecord{EggID: id, RequiredLevel: r.required[id]})
	}
	for _, id := range sortedIDs(r.history) {
		doc.Histories = append(doc.Histories, HistoryRecord{EggID: id, Entries: r.History(id)})
	}
	for _, id := range sortedIDs(r.stages) {
		doc.Stages = append(doc.Stages, StageRecord{EggID: id, Stage: r.stages[id]})
	}
	return doc
}

// Restore replaces all evolution state.
func (r *Resolver) Restore(doc Document) {
	r.required = make(map[int]int, len(doc.RequiredLevels))
	for _, rec := range doc.RequiredLevels {
		if rec.RequiredLevel >= 1 {
			r.required[rec.EggID] = rec.RequiredLevel
		}
	}
	limit := r.historyLimit()
	r.history = make(map[int][]HistoryEntry, len(doc.Histories))
	for _, rec := range doc.Histories {
		entries := rec.Entries
		if len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}
		if len(entries) > 0 {
			r.history[rec.EggID] = append([]HistoryEntry(nil), entries...)
		}
	}
	r.stages = make(map[int]int, len(doc.Stages))
	for _, rec := range doc.Stages {
		if rec.Stage > 0 {
			r.stages[rec.EggID] = rec.Stage
		}
	}
}
