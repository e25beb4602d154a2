// internal/catalog/catalog.go
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"cardwise/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

// Rule is a predefined reward rule on a catalog card.
type Rule struct {
	Kind       domain.MatchKind  `json:"kind"`
	MatchValue string            `json:"match_value"`
	RewardRate float64           `json:"reward_rate"`
	RewardKind domain.RewardKind `json:"reward_type"`
	PointValue float64           `json:"point_value,omitempty"`
}

// Card is a well-known card definition users can add without typing in
// rates and rules themselves.
type Card struct {
	Key               string            `json:"card_key"`
	Name              string            `json:"name"`
	Issuer            string            `json:"issuer"`
	CardType          string            `json:"card_type"`
	DefaultRewardRate float64           `json:"default_reward_rate"`
	DefaultRewardKind domain.RewardKind `json:"default_reward_kind"`
	DefaultPointValue float64           `json:"default_point_value,omitempty"`
	Rules             []Rule            `json:"reward_rules,omitempty"`
}

type Catalog struct {
	cards   []Card
	cardMap map[string]Card
}

// Load parses the embedded card definitions.
func Load() (*Catalog, error) {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	cat := &Catalog{
		cards:   make([]Card, 0, len(entries)),
		cardMap: make(map[string]Card, len(entries)),
	}

	for _, entry := range entries {
		fn := "data/" + entry.Name()

		file, err := dataFS.ReadFile(fn)
		if err != nil {
			return nil, fmt.Errorf("read card file %s: %w", fn, err)
		}

		var card Card
		if err := json.Unmarshal(file, &card); err != nil {
			return nil, fmt.Errorf("parse card file %s: %w", fn, err)
		}
		if card.Key == "" {
			return nil, fmt.Errorf("card file %s has no card_key", fn)
		}

		cat.cards = append(cat.cards, card)
		cat.cardMap[card.Key] = card
	}

	return cat, nil
}

// All returns every catalog card, in file order.
func (c *Catalog) All() []Card {
	return c.cards
}

// ByKey returns a catalog card by its key.
func (c *Catalog) ByKey(key string) (Card, bool) {
	card, ok := c.cardMap[key]
	return card, ok
}
