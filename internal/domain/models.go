// internal/domain/models.go
package domain

import "time"

// RewardKind is how a card pays out rewards.
type RewardKind string

const (
	RewardCashback RewardKind = "Cashback"
	RewardPoints   RewardKind = "Points"
	RewardMiles    RewardKind = "Miles"
)

// MatchKind is what a reward rule matches against.
type MatchKind string

const (
	MatchMerchant MatchKind = "Merchant"
	MatchCategory MatchKind = "Category"
)

// DefaultPointValue is the monetary value assumed for one point or mile
// when a card or rule does not set one.
const DefaultPointValue = 1.0

type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"-"`
	TelegramID int64  `json:"-"`
}

// Card — a user's payment card. Deleting a card removes its rules.
type Card struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"-"`
	Name              string     `json:"name"`
	Issuer            string     `json:"issuer"`
	Last4Digits       string     `json:"last4_digits"`
	Expiry            string     `json:"expiry"` // YYYY-MM
	CardType          string     `json:"card_type"`
	DefaultRewardRate float64    `json:"default_reward_rate"`
	DefaultRewardKind RewardKind `json:"default_reward_kind"`
	DefaultPointValue float64    `json:"default_point_value,omitempty"`
}

// RewardRule overrides a card's default rate for one merchant or category.
// MatchValue is compared case-insensitively. PointValue is required when
// RewardKind is Points or Miles.
type RewardRule struct {
	ID         int64      `json:"id"`
	CardID     int64      `json:"card_id"`
	Kind       MatchKind  `json:"kind"`
	MatchValue string     `json:"match_value"`
	RewardRate float64    `json:"reward_rate"`
	RewardKind RewardKind `json:"reward_type"`
	PointValue float64    `json:"point_value,omitempty"`
}

// Transaction is an immutable record of a past purchase. RewardEarned is
// fixed at save time and never recomputed.
type Transaction struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"-"`
	CardID       int64     `json:"card_id"`
	Date         time.Time `json:"date"`
	Merchant     string    `json:"merchant"`
	Category     string    `json:"category"`
	Amount       float64   `json:"amount"`
	RewardEarned float64   `json:"reward_earned"`
	Note         string    `json:"note,omitempty"`
}

// CardSummary is the card shape exposed inside recommendation results.
type CardSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Last4Digits string `json:"last4_digits"`
}

// MatchedRule reports which override won for a card.
type MatchedRule struct {
	Kind       MatchKind `json:"kind"`
	MatchValue string    `json:"match_value"`
}

// RankedResult is one card's computed reward for a purchase context.
// Rule is nil when the card's default rate applied.
type RankedResult struct {
	Card        CardSummary  `json:"card"`
	RewardRate  float64      `json:"reward_rate"`
	RewardKind  RewardKind   `json:"reward_type"`
	RewardValue float64      `json:"reward_value"`
	CashValue   float64      `json:"cash_value"`
	Rule        *MatchedRule `json:"rule,omitempty"`
}

func (c Card) Summary() CardSummary {
	return CardSummary{
		ID:          c.ID,
		Name:        c.Name,
		Issuer:      c.Issuer,
		Last4Digits: c.Last4Digits,
	}
}
