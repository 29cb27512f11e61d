package event

// Event payloads are plain values with no reference fields, so a handler
// can never change what a later handler observes.

// CurrencyGained fires after a credit, before CurrencyBalanceChanged.
type CurrencyGained struct {
	CurrencyID int    `json:"currency_id"`
	BaseAmount int    `json:"base_amount"`
	Amount     int    `json:"amount"` // after rarity multiplier
	Source     string `json:"source"`
	CreatureID int    `json:"creature_id"` // -1 when not tied to a creature
}

// CurrencySpent fires after a debit, before CurrencyBalanceChanged.
type CurrencySpent struct {
	CurrencyID int    `json:"currency_id"`
	Amount     int    `json:"amount"`
	Purpose    string `json:"purpose"`
	CreatureID int    `json:"creature_id"`
}

type CurrencyBalanceChanged struct {
	CurrencyID int `json:"currency_id"`
	Old        int `json:"old"`
	New        int `json:"new"`
	Delta      int `json:"delta"`
}

type StatChanged struct {
	CreatureID int    `json:"creature_id"`
	Stat       string `json:"stat"`
	Old        int    `json:"old"`
	New        int    `json:"new"`
}

// LevelChanged reasons.
const (
	ReasonGrowthAction   = "growth_action"
	ReasonEvolutionReset = "evolution_reset"
)

type LevelChanged struct {
	CreatureID int    `json:"creature_id"`
	Old        int    `json:"old"`
	New        int    `json:"new"`
	Amount     int    `json:"amount"`
	Reason     string `json:"reason"`
}

type GrowthActionPerformed struct {
	CreatureID int `json:"creature_id"`
	ActionID   int `json:"action_id"`
	Level      int `json:"level"` // level after the action
	SessionID  int `json:"session_id"`
}

type EvolutionAttempted struct {
	CreatureID int `json:"creature_id"`
	Level      int `json:"level"`
}

type EvolutionCompleted struct {
	CreatureID int    `json:"creature_id"`
	FormID     int    `json:"form_id"`
	Stage      int    `json:"stage"`
	Stats      [5]int `json:"stats"`
}

type EvolutionFailed struct {
	CreatureID   int    `json:"creature_id"`
	Reason       string `json:"reason"`
	MissingLevel int    `json:"missing_level"`
}

type FormRegistered struct {
	FormID       int    `json:"form_id"`
	CreatureType string `json:"creature_type"`
	Total        int    `json:"total"`
}

type DuplicateFormProcessed struct {
	FormID     int `json:"form_id"`
	CurrencyID int `json:"currency_id"` // -1 when the form's type has no special currency
	Amount     int `json:"amount"`
}
