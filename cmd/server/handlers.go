package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/xtding233/nurture-economy/internal/currency"
	"github.com/xtding233/nurture-economy/internal/engine"
	"github.com/xtding233/nurture-economy/internal/evolution"
	"github.com/xtding233/nurture-economy/internal/game"
)

type errResp struct {
	Err string `json:"err"`
}

type api struct {
	eng *engine.Engine
	log *log.Logger
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

// requireInt reads a mandatory integer parameter and writes the 400 itself.
func requireInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v, ok, msg := parseInt(r, key)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return 0, false
	}
	if !ok {
		http.Error(w, "missing param "+key, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("/balances", a.handleBalances)
	mux.HandleFunc("/grant", a.handleGrant)
	mux.HandleFunc("/creature", a.handleCreature)
	mux.HandleFunc("/actions", a.handleActions)
	mux.HandleFunc("/perform", a.handlePerform)
	mux.HandleFunc("/evolve", a.handleEvolve)
	mux.HandleFunc("/reset", a.handleReset)
	mux.HandleFunc("/run_reward", a.handleRunReward)
	mux.HandleFunc("/collection", a.handleCollection)
	mux.HandleFunc("/save", a.handleSave)
}

func (a *api) handleBalances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.eng.Balances())
}

// debug grant, e.g. /grant?currency=1&amount=100
func (a *api) handleGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := requireInt(w, r, "currency")
	if !ok {
		return
	}
	amount, ok := requireInt(w, r, "amount")
	if !ok {
		return
	}
	credited := a.eng.AddCurrency(id, amount, "grant")
	if credited == 0 {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "grant rejected"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"credited": credited})
}

// /creature?id=1 reads; adding &type=blue creates it on first use.
func (a *api) handleCreature(w http.ResponseWriter, r *http.Request) {
	id, ok := requireInt(w, r, "id")
	if !ok {
		return
	}
	if ty := r.URL.Query().Get("type"); ty != "" {
		writeJSON(w, http.StatusOK, a.eng.EnsureCreature(id, ty))
		return
	}
	c, found := a.eng.Creature(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errResp{Err: "creature not found"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *api) handleActions(w http.ResponseWriter, r *http.Request) {
	id, ok := requireInt(w, r, "id")
	if !ok {
		return
	}
	count, _, msg := parseInt(r, "count")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	actions, err := a.eng.AvailableActions(id, count)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errResp{Err: err.Error()})
		return
	}
	if actions == nil {
		actions = []game.ActionDef{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func (a *api) handlePerform(w http.ResponseWriter, r *http.Request) {
	id, ok := requireInt(w, r, "id")
	if !ok {
		return
	}
	action, ok := requireInt(w, r, "action")
	if !ok {
		return
	}
	res := a.eng.PerformAction(id, action)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

// /evolve?id=1 evolves; &check=1 only reports the condition and &reset=1
// resets the creature on success.
func (a *api) handleEvolve(w http.ResponseWriter, r *http.Request) {
	id, ok := requireInt(w, r, "id")
	if !ok {
		return
	}
	if r.URL.Query().Get("check") == "1" {
		cond, err := a.eng.CheckEvolution(id)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errResp{Err: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, cond)
		return
	}
	var res evolution.Result
	if r.URL.Query().Get("reset") == "1" {
		res = a.eng.EvolveAndReset(id)
	} else {
		res = a.eng.AttemptEvolution(id)
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

func (a *api) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := requireInt(w, r, "id")
	if !ok {
		return
	}
	if !a.eng.ResetStats(id) {
		writeJSON(w, http.StatusNotFound, errResp{Err: "creature not found"})
		return
	}
	c, _ := a.eng.Creature(id)
	writeJSON(w, http.StatusOK, c)
}

// /run_reward?score=120&rank=A&type=blue&id=1&cleared=1
func (a *api) handleRunReward(w http.ResponseWriter, r *http.Request) {
	score, ok := requireInt(w, r, "score")
	if !ok {
		return
	}
	creatureID, hasID, msg := parseInt(r, "id")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !hasID {
		creatureID = currency.NoCreature
	}
	q := r.URL.Query()
	rc := currency.RunContext{
		Cleared:      q.Get("cleared") != "0",
		Score:        score,
		Rank:         q.Get("rank"),
		CreatureType: q.Get("type"),
		CreatureID:   creatureID,
	}
	writeJSON(w, http.StatusOK, a.eng.ProcessRunningReward(rc))
}

func (a *api) handleCollection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.eng.Collection())
}

func (a *api) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := a.eng.Save(r.Context()); err != nil {
		a.log.Printf("save: %v", err)
		writeJSON(w, http.StatusInternalServerError, errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}
