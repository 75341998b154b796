// Package parser turns one free-text chat line into a domain.Intent using fixed
// keyword rules. It never fails: anything it cannot find is left unknown.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vbonduro/nutribot/internal/domain"
)

// PoundsToKg is the conversion factor applied to weights given in lbs or pounds.
const PoundsToKg = 0.453592

var (
	metricWeightRe   = regexp.MustCompile(`(\d{2,3})\s?(?:kgs|kg|kilogram)`)
	imperialWeightRe = regexp.MustCompile(`(\d{2,3})\s?(?:lbs|pounds)`)
	cravingPhraseRe  = regexp.MustCompile(`crav(?:ing|e)\s+([a-z]+)`)
)

// CravingKeywords is checked in order; the first one found in the text wins.
var CravingKeywords = []string{
	"chips", "nachos", "crunch", "sweet", "dessert", "chaat",
	"oreo", "mint", "drink", "sev", "spicy", "salty",
}

// Parse extracts weight, goal and craving from text.
func Parse(text string) domain.Intent {
	lower := strings.ToLower(text)
	return domain.Intent{
		Weight:  parseWeight(lower),
		Goal:    parseGoal(lower),
		Craving: parseCraving(lower),
	}
}

// parseWeight returns kilograms from the first "<n>kg" mention, falling back to
// the first "<n>lbs" mention converted and rounded.
func parseWeight(text string) *int {
	if m := metricWeightRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return &n
		}
	}
	if m := imperialWeightRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			kg := int(math.Round(float64(n) * PoundsToKg))
			return &kg
		}
	}
	return nil
}

// parseGoal runs the three goal checks in sequence. They are not exclusive, so
// a later match overrides an earlier one: "cut then maintain" resolves to maintain.
func parseGoal(text string) domain.Goal {
	var goal domain.Goal
	if containsAny(text, "lose", "cut") {
		goal = domain.GoalLose
	}
	if containsAny(text, "gain", "bulk") {
		goal = domain.GoalGain
	}
	if strings.Contains(text, "maintain") {
		goal = domain.GoalMaintain
	}
	return goal
}

func parseCraving(text string) string {
	for _, k := range CravingKeywords {
		if strings.Contains(text, k) {
			return k
		}
	}
	if m := cravingPhraseRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
