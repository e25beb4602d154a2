// internal/recommend/recommend.go
package recommend

import (
	"math"
	"sort"
	"strings"

	"cardwise/internal/domain"
)

// Recommend computes the reward every card would earn for a purchase and
// returns the results ranked by cash value, best first. Ties keep the input
// card order, so index 0 is deterministic across calls.
//
// It is a pure function: no I/O, no mutation of cards or rules. A card with
// no entry in rulesByCard uses its default rate. A non-positive or non-finite
// amount yields zero-reward results instead of an error.
func Recommend(merchant, category string, amount float64, cards []domain.Card, rulesByCard map[int64][]domain.RewardRule) []domain.RankedResult {
	if !(amount > 0) || math.IsInf(amount, 0) {
		amount = 0
	}

	results := make([]domain.RankedResult, 0, len(cards))
	for _, card := range cards {
		results = append(results, ResolveCard(merchant, category, amount, card, rulesByCard[card.ID]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CashValue > results[j].CashValue
	})

	return results
}

// ResolveCard computes the reward for a single card. The best matching rule
// is the one with the strictly highest rate; equal-rate matches keep the
// first rule seen, in stored order. A rule only wins if its rate beats the
// card's default.
func ResolveCard(merchant, category string, amount float64, card domain.Card, rules []domain.RewardRule) domain.RankedResult {
	rate := card.DefaultRewardRate
	kind := card.DefaultRewardKind
	pointValue := card.DefaultPointValue
	var winner *domain.RewardRule

	for i := range rules {
		rule := &rules[i]
		if !ruleMatches(rule, merchant, category) {
			continue
		}
		if rule.RewardRate > rate {
			rate = rule.RewardRate
			kind = rule.RewardKind
			pointValue = rule.PointValue
			winner = rule
		}
	}

	quantity := amount * rate / 100

	cash := quantity
	if kind == domain.RewardPoints || kind == domain.RewardMiles {
		if pointValue <= 0 {
			pointValue = domain.DefaultPointValue
		}
		cash = quantity * pointValue
	}

	result := domain.RankedResult{
		Card:        card.Summary(),
		RewardRate:  rate,
		RewardKind:  kind,
		RewardValue: quantity,
		CashValue:   cash,
	}
	if winner != nil {
		result.Rule = &domain.MatchedRule{Kind: winner.Kind, MatchValue: winner.MatchValue}
	}
	return result
}

func ruleMatches(rule *domain.RewardRule, merchant, category string) bool {
	switch rule.Kind {
	case domain.MatchMerchant:
		return strings.EqualFold(rule.MatchValue, merchant)
	case domain.MatchCategory:
		return strings.EqualFold(rule.MatchValue, category)
	default:
		return false
	}
}
