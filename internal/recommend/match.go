package recommend

import (
	"strings"

	"github.com/vbonduro/nutribot/internal/domain"
)

// DefaultCount is how many leading catalog entries are suggested when the
// craving is unknown or matches nothing.
const DefaultCount = 4

// MatchTag reports whether a catalog tag matches a craving. The rule is
// deliberately loose: equality, or either string containing the other.
func MatchTag(tag, craving string) bool {
	if tag == craving {
		return true
	}
	return strings.Contains(craving, tag) || strings.Contains(tag, craving)
}

// matchName reports whether the snack's display name mentions the craving.
func matchName(name, craving string) bool {
	return strings.Contains(strings.ToLower(name), craving)
}

// selectCandidates picks snacks for craving, in catalog order, trying each
// stage in turn: tag match, then name match, then the default head of the list.
func selectCandidates(snacks []domain.Snack, craving string) ([]domain.Snack, domain.MatchKind) {
	craving = strings.ToLower(strings.TrimSpace(craving))
	if craving == "" {
		return head(snacks), domain.MatchDefault
	}

	if byTag := filter(snacks, func(s domain.Snack) bool {
		for _, t := range s.Tags {
			if MatchTag(t, craving) {
				return true
			}
		}
		return false
	}); len(byTag) > 0 {
		return byTag, domain.MatchTag
	}

	if byName := filter(snacks, func(s domain.Snack) bool {
		return matchName(s.Name, craving)
	}); len(byName) > 0 {
		return byName, domain.MatchName
	}

	return head(snacks), domain.MatchDefault
}

func filter(snacks []domain.Snack, keep func(domain.Snack) bool) []domain.Snack {
	var out []domain.Snack
	for _, s := range snacks {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func head(snacks []domain.Snack) []domain.Snack {
	if len(snacks) > DefaultCount {
		return snacks[:DefaultCount]
	}
	return snacks
}
