package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardwise/internal/domain"
)

func cashbackCard(id int64, name string, rate float64) domain.Card {
	return domain.Card{
		ID:                id,
		Name:              name,
		DefaultRewardRate: rate,
		DefaultRewardKind: domain.RewardCashback,
	}
}

func pointsCard(id int64, name string, rate, pointValue float64) domain.Card {
	return domain.Card{
		ID:                id,
		Name:              name,
		DefaultRewardRate: rate,
		DefaultRewardKind: domain.RewardPoints,
		DefaultPointValue: pointValue,
	}
}

func TestRecommend_EmptyCardList(t *testing.T) {
	results := Recommend("Amazon", "Shopping", 1000, nil, nil)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestRecommend_NoMatchingRuleUsesDefault(t *testing.T) {
	card := cashbackCard(1, "Basic", 1.5)
	rules := map[int64][]domain.RewardRule{
		1: {{ID: 10, CardID: 1, Kind: domain.MatchMerchant, MatchValue: "Zomato", RewardRate: 5, RewardKind: domain.RewardCashback}},
	}

	results := Recommend("Amazon", "Shopping", 1000, []domain.Card{card}, rules)
	require.Len(t, results, 1)
	assert.Equal(t, 1.5, results[0].RewardRate)
	assert.Equal(t, 15.0, results[0].RewardValue)
	assert.Equal(t, 15.0, results[0].CashValue)
	assert.Nil(t, results[0].Rule)
}

func TestRecommend_CategoryRuleOverridesDefault(t *testing.T) {
	// Card A: default 1% cashback, 5% on dining. Purchase of 2000 in
	// category Dining must pay 100 via the category rule.
	card := cashbackCard(1, "A", 1)
	rules := map[int64][]domain.RewardRule{
		1: {{ID: 10, CardID: 1, Kind: domain.MatchCategory, MatchValue: "dining", RewardRate: 5, RewardKind: domain.RewardCashback}},
	}

	results := Recommend("Some Restaurant", "Dining", 2000, []domain.Card{card}, rules)
	require.Len(t, results, 1)
	assert.Equal(t, 5.0, results[0].RewardRate)
	assert.Equal(t, 100.0, results[0].CashValue)
	require.NotNil(t, results[0].Rule)
	assert.Equal(t, domain.MatchCategory, results[0].Rule.Kind)
	assert.Equal(t, "dining", results[0].Rule.MatchValue)
}

func TestRecommend_MerchantMatchIsCaseInsensitive(t *testing.T) {
	card := cashbackCard(1, "A", 1)
	rules := map[int64][]domain.RewardRule{
		1: {{ID: 10, CardID: 1, Kind: domain.MatchMerchant, MatchValue: "amazon", RewardRate: 3, RewardKind: domain.RewardCashback}},
	}

	results := Recommend("Amazon", "Shopping", 1000, []domain.Card{card}, rules)
	require.Len(t, results, 1)
	assert.Equal(t, 3.0, results[0].RewardRate)
	require.NotNil(t, results[0].Rule)
}

func TestRecommend_HighestRateRuleWins(t *testing.T) {
	card := cashbackCard(1, "A", 1)
	rules := map[int64][]domain.RewardRule{
		1: {
			{ID: 10, CardID: 1, Kind: domain.MatchMerchant, MatchValue: "Amazon", RewardRate: 2, RewardKind: domain.RewardCashback},
			{ID: 11, CardID: 1, Kind: domain.MatchCategory, MatchValue: "Shopping", RewardRate: 4, RewardKind: domain.RewardCashback},
			{ID: 12, CardID: 1, Kind: domain.MatchMerchant, MatchValue: "Amazon", RewardRate: 3, RewardKind: domain.RewardCashback},
		},
	}

	results := Recommend("Amazon", "Shopping", 1000, []domain.Card{card}, rules)
	require.Len(t, results, 1)
	assert.Equal(t, 4.0, results[0].RewardRate)
	assert.Equal(t, "Shopping", results[0].Rule.MatchValue)
}

func TestRecommend_EqualRateMatchesKeepFirstSeen(t *testing.T) {
	card := cashbackCard(1, "A", 1)
	rules := map[int64][]domain.RewardRule{
		1: {
			{ID: 10, CardID: 1, Kind: domain.MatchMerchant, MatchValue: "Amazon", RewardRate: 5, RewardKind: domain.RewardCashback},
			{ID: 11, CardID: 1, Kind: domain.MatchCategory, MatchValue: "Shopping", RewardRate: 5, RewardKind: domain.RewardCashback},
		},
	}

	results := Recommend("Amazon", "Shopping", 1000, []domain.Card{card}, rules)
	require.NotNil(t, results[0].Rule)
	assert.Equal(t, domain.MatchMerchant, results[0].Rule.Kind)
}

func TestRecommend_RuleBelowDefaultIsIgnored(t *testing.T) {
	card := cashbackCard(1, "A", 5)
	rules := map[int64][]domain.RewardRule{
		1: {{ID: 10, CardID: 1, Kind: domain.MatchMerchant, MatchValue: "Amazon", RewardRate: 2, RewardKind: domain.RewardCashback}},
	}

	results := Recommend("Amazon", "Shopping", 1000, []domain.Card{card}, rules)
	assert.Equal(t, 5.0, results[0].RewardRate)
	assert.Nil(t, results[0].Rule)
}

func TestRecommend_PointValueConvertsToCash(t *testing.T) {
	// Card A: 1% cashback. Card B: 2 points per 100, each point worth 0.5.
	// Both are worth 10 on a 1000 purchase; A keeps first place on the tie.
	cards := []domain.Card{
		cashbackCard(1, "A", 1),
		pointsCard(2, "B", 2, 0.5),
	}

	results := Recommend("Amazon", "Shopping", 1000, cards, nil)
	require.Len(t, results, 2)

	assert.Equal(t, "A", results[0].Card.Name)
	assert.Equal(t, 10.0, results[0].CashValue)

	assert.Equal(t, "B", results[1].Card.Name)
	assert.Equal(t, 20.0, results[1].RewardValue)
	assert.Equal(t, 10.0, results[1].CashValue)
}

func TestRecommend_MissingPointValueDefaultsToOne(t *testing.T) {
	card := pointsCard(1, "A", 2, 0)

	results := Recommend("Amazon", "Shopping", 1000, []domain.Card{card}, nil)
	assert.Equal(t, 20.0, results[0].RewardValue)
	assert.Equal(t, 20.0, results[0].CashValue)
}

func TestRecommend_RuleWithPointsAdoptsRulePointValue(t *testing.T) {
	card := cashbackCard(1, "A", 1)
	rules := map[int64][]domain.RewardRule{
		1: {{ID: 10, CardID: 1, Kind: domain.MatchCategory, MatchValue: "Travel", RewardRate: 4, RewardKind: domain.RewardMiles, PointValue: 0.75}},
	}

	results := Recommend("MakeMyTrip", "Travel", 1000, []domain.Card{card}, rules)
	assert.Equal(t, domain.RewardMiles, results[0].RewardKind)
	assert.Equal(t, 40.0, results[0].RewardValue)
	assert.Equal(t, 30.0, results[0].CashValue)
}

func TestRecommend_RankingIsStableOnTies(t *testing.T) {
	cards := []domain.Card{
		cashbackCard(1, "A", 2),
		cashbackCard(2, "B", 2),
		cashbackCard(3, "C", 3),
		cashbackCard(4, "D", 2),
	}

	results := Recommend("Amazon", "Shopping", 500, cards, nil)
	require.Len(t, results, 4)
	assert.Equal(t, "C", results[0].Card.Name)
	assert.Equal(t, "A", results[1].Card.Name)
	assert.Equal(t, "B", results[2].Card.Name)
	assert.Equal(t, "D", results[3].Card.Name)
}

func TestRecommend_Idempotent(t *testing.T) {
	cards := []domain.Card{
		cashbackCard(1, "A", 1),
		pointsCard(2, "B", 2, 0.5),
		cashbackCard(3, "C", 2),
	}
	rules := map[int64][]domain.RewardRule{
		2: {{ID: 10, CardID: 2, Kind: domain.MatchMerchant, MatchValue: "Amazon", RewardRate: 6, RewardKind: domain.RewardPoints, PointValue: 0.5}},
	}

	first := Recommend("Amazon", "Shopping", 1234.56, cards, rules)
	second := Recommend("Amazon", "Shopping", 1234.56, cards, rules)
	assert.Equal(t, first, second)
}

func TestRecommend_CashValueLinearInAmount(t *testing.T) {
	cards := []domain.Card{
		cashbackCard(1, "A", 1.5),
		pointsCard(2, "B", 3, 0.25),
	}

	small := Recommend("Amazon", "Shopping", 100, cards, nil)
	large := Recommend("Amazon", "Shopping", 1000, cards, nil)
	require.Len(t, large, 2)

	for i := range small {
		assert.Equal(t, small[i].Card.ID, large[i].Card.ID)
		assert.InDelta(t, small[i].CashValue*10, large[i].CashValue, 1e-9)
	}
}

func TestRecommend_NonPositiveAmountYieldsZeroReward(t *testing.T) {
	cards := []domain.Card{cashbackCard(1, "A", 2)}

	for _, amount := range []float64{0, -50, math.NaN(), math.Inf(1)} {
		results := Recommend("Amazon", "Shopping", amount, cards, nil)
		require.Len(t, results, 1)
		assert.Equal(t, 0.0, results[0].RewardValue)
		assert.Equal(t, 0.0, results[0].CashValue)
		assert.Equal(t, 2.0, results[0].RewardRate)
	}
}

func TestRecommend_DoesNotMutateInputs(t *testing.T) {
	cards := []domain.Card{cashbackCard(2, "B", 1), cashbackCard(1, "A", 5)}
	rules := map[int64][]domain.RewardRule{
		2: {{ID: 10, CardID: 2, Kind: domain.MatchMerchant, MatchValue: "Amazon", RewardRate: 2, RewardKind: domain.RewardCashback}},
	}

	_ = Recommend("Amazon", "Shopping", 100, cards, rules)

	assert.Equal(t, int64(2), cards[0].ID)
	assert.Equal(t, int64(1), cards[1].ID)
	assert.Len(t, rules[2], 1)
	assert.Equal(t, 2.0, rules[2][0].RewardRate)
}

func TestResolveCard_NoRules(t *testing.T) {
	result := ResolveCard("Amazon", "Shopping", 1000, cashbackCard(1, "A", 1), nil)
	assert.Equal(t, 10.0, result.CashValue)
	assert.Nil(t, result.Rule)
}
