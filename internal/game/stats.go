package game

import (
	"strings"

	"golang.org/x/text/cases"
)

// StatNames lists the five creature stats in canonical order. Dominant-stat
// ties resolve to the earliest entry.
var StatNames = [5]string{"power", "wisdom", "agility", "charm", "vitality"}

// StatIndex returns the canonical position of a stat name, or -1.
func StatIndex(name string) int {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range StatNames {
		if s == n {
			return i
		}
	}
	return -1
}

// NormalizeType case-folds a creature type tag so "Blue", "BLUE " and
// "blue" share one currency pool and one buff bucket.
func NormalizeType(tag string) string {
	return cases.Fold().String(strings.TrimSpace(tag))
}
