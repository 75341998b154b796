package domain

import "time"

type Snack struct {
	ID      string   `json:"id" yaml:"id" toml:"id"`
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Kcal    int      `json:"kcal" yaml:"kcal" toml:"kcal"`
	Protein float64  `json:"protein" yaml:"protein" toml:"protein"`
	Tags    []string `json:"tags" yaml:"tags" toml:"tags"`
}

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// Multiplier returns the portion multiplier for g. Unknown goals portion like maintain.
func (g Goal) Multiplier() float64 {
	switch g {
	case GoalLose:
		return 0.8
	case GoalGain:
		return 1.15
	default:
		return 1.0
	}
}

// Intent is what the parser could pull out of one line of user text.
// A nil Weight, empty Goal or empty Craving means the field is unknown.
type Intent struct {
	Weight  *int   `json:"weight"`
	Goal    Goal   `json:"goal,omitempty"`
	Craving string `json:"craving,omitempty"`
}

type MatchKind string

const (
	MatchTag     MatchKind = "tag"
	MatchName    MatchKind = "name"
	MatchDefault MatchKind = "default"
)

type Suggestion struct {
	SnackID string  `json:"snack_id"`
	Name    string  `json:"name"`
	Kcal    int     `json:"kcal"`
	Protein float64 `json:"protein"`
	Note    string  `json:"note"`
}

type Recommendation struct {
	Weight          int          `json:"weight"`
	WeightDefaulted bool         `json:"weight_defaulted"`
	BaselineProtein int          `json:"baseline_protein_g"`
	ActiveProtein   int          `json:"active_protein_g"`
	Goal            Goal         `json:"goal"`
	Craving         string       `json:"craving,omitempty"`
	Match           MatchKind    `json:"match"`
	Items           []Suggestion `json:"items"`
}

// FeedbackSubmission is one stored rating form. A rating of 0 means the dish
// was left unrated.
type FeedbackSubmission struct {
	ID         string         `json:"id"`
	Ratings    map[string]int `json:"ratings"`
	ReceivedAt time.Time      `json:"received_at"`
}

type DishSummary struct {
	Dish    string  `json:"dish"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
