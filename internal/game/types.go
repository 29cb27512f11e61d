// types.go
package game

// RawTables is the YAML document shape. Pointer fields in Settings tell the
// merge step whether a profile actually set them.
type RawTables struct {
	Version     string         `yaml:"version"`
	Settings    SettingsConfig `yaml:"settings"`
	Currencies  []CurrencyDef  `yaml:"currencies"`
	Actions     []ActionDef    `yaml:"actions"`
	Rules       []RuleRow      `yaml:"evolution_rules"`
	Forms       []FormDef      `yaml:"forms"`
	RankRewards map[string]int `yaml:"rank_rewards,omitempty"`
	Notes       string         `yaml:"notes,omitempty"`
}

type SettingsConfig struct {
	CommonCurrencyID      *int `yaml:"common_currency_id"`
	DefaultRequiredLevel  *int `yaml:"default_required_level"`
	HistoryLimit          *int `yaml:"history_limit"`
	EvolutionHistoryLimit *int `yaml:"evolution_history_limit"`
	AvailableActionCount  *int `yaml:"available_action_count"`
}

// CommonTag marks the currency shared by every creature type.
const CommonTag = "common"

type CurrencyDef struct {
	ID               int     `yaml:"id"`
	Name             string  `yaml:"name"`
	RarityMultiplier float64 `yaml:"rarity_multiplier"`
	TypeTag          string  `yaml:"type_tag"` // "common" or the owning creature type
}

type StatDelta struct {
	Stat  string `yaml:"stat"`
	Delta int    `yaml:"delta"`
}

type ActionDef struct {
	ID            int         `yaml:"id"`
	Name          string      `yaml:"name"`
	CostCommon    int         `yaml:"cost_common"`
	CostSpecial   int         `yaml:"cost_special"`
	Effects       []StatDelta `yaml:"effects"`
	MinLevel      int         `yaml:"min_level"`
	MaxLevel      int         `yaml:"max_level"`
	Weight        int         `yaml:"weight"`
	CooldownTurns int         `yaml:"cooldown_turns"`
	ExclusiveWith []int       `yaml:"exclusive_with,omitempty"`
}

// ExcludesID reports whether id may not be picked alongside a.
func (a ActionDef) ExcludesID(id int) bool {
	for _, x := range a.ExclusiveWith {
		if x == id {
			return true
		}
	}
	return false
}

type Outcome struct {
	FormID      int `yaml:"form_id"`
	Probability int `yaml:"probability"` // percent; rows should sum to 100
}

type RuleRow struct {
	CreatureType    string    `yaml:"creature_type"`
	DominantStat    string    `yaml:"dominant_stat"`
	MinNurtureLevel int       `yaml:"min_nurture_level"`
	Outcomes        []Outcome `yaml:"outcomes"`
}

type BuffType string

const (
	BuffNone                 BuffType = "none"
	BuffCommonCurrencyGain   BuffType = "common_currency_gain"
	BuffSpecialCurrencyGain  BuffType = "special_currency_gain"
	BuffDuplicateRewardBonus BuffType = "duplicate_reward_bonus"
)

type FormDef struct {
	ID                    int      `yaml:"id"`
	Name                  string   `yaml:"name"`
	CreatureType          string   `yaml:"creature_type"`
	BuffType              BuffType `yaml:"buff_type"`
	BuffValuePercent      int      `yaml:"buff_value_percent"`
	BuffTargetType        string   `yaml:"buff_target_type,omitempty"` // empty: the form's own type
	DuplicateRewardAmount int      `yaml:"duplicate_reward_amount"`
}

// BuffTarget returns the normalized creature type a special-currency buff applies to.
func (f FormDef) BuffTarget() string {
	if f.BuffTargetType != "" {
		return NormalizeType(f.BuffTargetType)
	}
	return NormalizeType(f.CreatureType)
}

// Settings are the normalized engine-wide knobs.
type Settings struct {
	CommonCurrencyID      int
	DefaultRequiredLevel  int
	HistoryLimit          int
	EvolutionHistoryLimit int
	AvailableActionCount  int
}

// DefaultSettings used when a table omits a value.
func DefaultSettings() Settings {
	return Settings{
		CommonCurrencyID:      1,
		DefaultRequiredLevel:  5,
		HistoryLimit:          100,
		EvolutionHistoryLimit: 50,
		AvailableActionCount:  5,
	}
}
