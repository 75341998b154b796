// Package catalog holds the immutable list of snacks the bot can recommend.
package catalog

import (
	"fmt"
	"strings"

	"github.com/vbonduro/nutribot/internal/domain"
)

// Catalog is an ordered, read-only set of snacks. All accessors return copies so
// callers cannot mutate the catalog through returned values.
type Catalog struct {
	snacks []domain.Snack
	byID   map[string]int
}

// New validates snacks and returns a catalog holding a private copy of them.
func New(snacks []domain.Snack) (*Catalog, error) {
	c := &Catalog{
		snacks: make([]domain.Snack, 0, len(snacks)),
		byID:   make(map[string]int, len(snacks)),
	}
	for i, s := range snacks {
		s.ID = strings.TrimSpace(s.ID)
		s.Name = strings.TrimSpace(s.Name)
		if s.ID == "" {
			return nil, fmt.Errorf("snack %d: id is required", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("snack %q: duplicate id", s.ID)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("snack %q: name is required", s.ID)
		}
		if s.Kcal <= 0 {
			return nil, fmt.Errorf("snack %q: kcal must be positive, got %d", s.ID, s.Kcal)
		}
		if s.Protein < 0 {
			return nil, fmt.Errorf("snack %q: protein must not be negative, got %v", s.ID, s.Protein)
		}
		s.Tags = normalizeTags(s.Tags)
		c.byID[s.ID] = len(c.snacks)
		c.snacks = append(c.snacks, s)
	}
	return c, nil
}

// Default returns the built-in seven snack menu.
func Default() *Catalog {
	c, err := New(defaultSnacks())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

func defaultSnacks() []domain.Snack {
	return []domain.Snack{
		{ID: "papdi_chaat", Name: "Papdi Chaat (small cup)", Kcal: 180, Protein: 5, Tags: []string{"chaat", "savory", "street"}},
		{ID: "bhel_puri", Name: "Bhel Puri (serving)", Kcal: 220, Protein: 4, Tags: []string{"savory", "crunchy", "street"}},
		{ID: "nachos", Name: "Nachos (portion)", Kcal: 330, Protein: 7, Tags: []string{"crunchy", "cheesy", "salty"}},
		{ID: "oreo_roll", Name: "Oreo Swiss Roll (slice)", Kcal: 270, Protein: 3, Tags: []string{"sweet", "dessert"}},
		{ID: "mint_cooler", Name: "Mint Pulse Cooler (glass)", Kcal: 120, Protein: 0, Tags: []string{"drink", "refreshing"}},
		{ID: "chaat_parfait", Name: "Chaat Parfait (small)", Kcal: 190, Protein: 6, Tags: []string{"layered", "savory", "starch"}},
		{ID: "sev_snack", Name: "Sev Mix (small)", Kcal: 200, Protein: 4, Tags: []string{"crunchy", "savory"}},
	}
}

func (c *Catalog) Len() int {
	return len(c.snacks)
}

// All returns every snack in catalog order.
func (c *Catalog) All() []domain.Snack {
	return c.First(len(c.snacks))
}

// First returns up to n snacks in catalog order.
func (c *Catalog) First(n int) []domain.Snack {
	if n > len(c.snacks) {
		n = len(c.snacks)
	}
	if n < 0 {
		n = 0
	}
	out := make([]domain.Snack, n)
	for i := 0; i < n; i++ {
		out[i] = clone(c.snacks[i])
	}
	return out
}

// Get returns the snack with the given id, or false if there is none.
func (c *Catalog) Get(id string) (domain.Snack, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Snack{}, false
	}
	return clone(c.snacks[i]), true
}

// IDs returns snack ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.snacks))
	for i, s := range c.snacks {
		ids[i] = s.ID
	}
	return ids
}

func clone(s domain.Snack) domain.Snack {
	s.Tags = append([]string(nil), s.Tags...)
	return s
}

// normalizeTags lowercases and trims tags, dropping blanks and duplicates while
// keeping first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
