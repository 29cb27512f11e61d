// Package gametest builds small, fully valid tables for package tests.
package gametest

import (
	"testing"

	"github.com/xtding233/nurture-economy/internal/game"
)

// Currency ids in the fixture.
const (
	Common  = 1
	Blue    = 2
	Red     = 3
	Crystal = 4 // "green" special pool with a 1.4 rarity multiplier
)

// YAML is a compact table set covering every buff type and an exclusive pair.
const YAML = `
version: "test"
settings:
  common_currency_id: 1
  default_required_level: 5
currencies:
  - {id: 1, name: coin, rarity_multiplier: 1.0, type_tag: common}
  - {id: 2, name: blue shard, rarity_multiplier: 1.0, type_tag: blue}
  - {id: 3, name: red shard, rarity_multiplier: 1.0, type_tag: red}
  - {id: 4, name: crystal, rarity_multiplier: 1.4, type_tag: green}
actions:
  - id: 1
    name: feed
    cost_common: 10
    effects: [{stat: vitality, delta: 2}]
    min_level: 1
    max_level: 10
    weight: 1
  - id: 2
    name: train
    cost_common: 20
    cost_special: 5
    effects: [{stat: power, delta: 3}, {stat: charm, delta: -1}]
    min_level: 1
    max_level: 10
    weight: 1
    exclusive_with: [1]
  - id: 3
    name: study
    cost_common: 15
    effects: [{stat: wisdom, delta: 2}]
    min_level: 3
    max_level: 10
    weight: 2
    cooldown_turns: 2
  - id: 4
    name: nap
    effects: [{stat: vitality, delta: 1}]
    min_level: 1
    max_level: 10
    weight: 0
forms:
  - {id: 100, name: blue knight, creature_type: blue, buff_type: common_currency_gain, buff_value_percent: 10, duplicate_reward_amount: 30}
  - {id: 101, name: blue sage, creature_type: blue, buff_type: common_currency_gain, buff_value_percent: 5, duplicate_reward_amount: 20}
  - {id: 102, name: blue dancer, creature_type: blue, buff_type: special_currency_gain, buff_value_percent: 20, duplicate_reward_amount: 10}
  - {id: 103, name: red lord, creature_type: red, buff_type: duplicate_reward_bonus, buff_value_percent: 50, duplicate_reward_amount: 40}
  - {id: 104, name: red imp, creature_type: red, buff_type: special_currency_gain, buff_value_percent: 25, buff_target_type: Blue, duplicate_reward_amount: 5}
  - {id: 105, name: blue blob, creature_type: blue, buff_type: none, duplicate_reward_amount: 0}
evolution_rules:
  - creature_type: blue
    dominant_stat: power
    min_nurture_level: 5
    outcomes: [{form_id: 100, probability: 60}, {form_id: 101, probability: 40}]
  - creature_type: blue
    dominant_stat: power
    min_nurture_level: 10
    outcomes: [{form_id: 102, probability: 100}]
  - creature_type: blue
    dominant_stat: wisdom
    min_nurture_level: 5
    outcomes: [{form_id: 101, probability: 100}]
  - creature_type: blue
    dominant_stat: vitality
    min_nurture_level: 0
    outcomes: [{form_id: 105, probability: 0}]
  - creature_type: red
    dominant_stat: power
    min_nurture_level: 1
    outcomes: [{form_id: 103, probability: 50}, {form_id: 104, probability: 50}]
rank_rewards:
  S: 50
  A: 30
  B: 10
`

// Tables returns the normalized fixture tables or fails the test.
func Tables(t testing.TB) *game.Tables {
	t.Helper()
	raw, err := game.ParseYAML([]byte(YAML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	tables, err := game.Normalize(raw)
	if err != nil {
		t.Fatalf("normalize fixture: %v", err)
	}
	return tables
}
