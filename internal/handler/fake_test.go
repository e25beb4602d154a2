package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"cardwise/internal/domain"
	"cardwise/internal/storage"
)

// testUser injects a user id the way the auth middleware does.
func testUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Next()
	}
}

// fakeStore is an in-memory TransactionStore for handler tests.
type fakeStore struct {
	cards        []domain.Card
	rules        map[int64][]domain.RewardRule
	transactions []domain.Transaction
	nextID       int64
	failSnapshot bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{rules: make(map[int64][]domain.RewardRule), nextID: 100}
}

func (f *fakeStore) CreateCard(_ context.Context, card domain.Card) (int64, error) {
	f.nextID++
	card.ID = f.nextID
	f.cards = append(f.cards, card)
	return card.ID, nil
}

func (f *fakeStore) GetCard(_ context.Context, userID, cardID int64) (*domain.Card, error) {
	for i := range f.cards {
		if f.cards[i].ID == cardID && f.cards[i].UserID == userID {
			card := f.cards[i]
			return &card, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ListCards(_ context.Context, userID int64) ([]domain.Card, error) {
	out := make([]domain.Card, 0)
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateCard(_ context.Context, card domain.Card) error {
	for i := range f.cards {
		if f.cards[i].ID == card.ID && f.cards[i].UserID == card.UserID {
			f.cards[i] = card
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteCard(_ context.Context, userID, cardID int64) error {
	for i := range f.cards {
		if f.cards[i].ID == cardID && f.cards[i].UserID == userID {
			f.cards = append(f.cards[:i], f.cards[i+1:]...)
			delete(f.rules, cardID)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) Snapshot(ctx context.Context, userID int64) ([]domain.Card, map[int64][]domain.RewardRule, error) {
	if f.failSnapshot {
		return nil, nil, errors.New("snapshot failed")
	}
	cards, _ := f.ListCards(ctx, userID)
	return cards, f.rules, nil
}

func (f *fakeStore) CreateRule(_ context.Context, userID int64, rule domain.RewardRule) (int64, error) {
	if (rule.RewardKind == domain.RewardPoints || rule.RewardKind == domain.RewardMiles) && rule.PointValue <= 0 {
		return 0, storage.ErrPointValueRequired
	}
	owned := false
	for _, c := range f.cards {
		if c.ID == rule.CardID && c.UserID == userID {
			owned = true
			break
		}
	}
	if !owned {
		return 0, storage.ErrNotFound
	}
	f.nextID++
	rule.ID = f.nextID
	f.rules[rule.CardID] = append(f.rules[rule.CardID], rule)
	return rule.ID, nil
}

func (f *fakeStore) ListRules(_ context.Context, userID, cardID int64) ([]domain.RewardRule, error) {
	return f.rules[cardID], nil
}

func (f *fakeStore) DeleteRule(_ context.Context, userID, ruleID int64) error {
	for cardID, rules := range f.rules {
		for i := range rules {
			if rules[i].ID == ruleID {
				f.rules[cardID] = append(rules[:i], rules[i+1:]...)
				return nil
			}
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx domain.Transaction) (int64, error) {
	f.nextID++
	tx.ID = f.nextID
	f.transactions = append(f.transactions, tx)
	return tx.ID, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, userID, txID int64) (*domain.Transaction, error) {
	for i := range f.transactions {
		if f.transactions[i].ID == txID && f.transactions[i].UserID == userID {
			tx := f.transactions[i]
			return &tx, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context, userID int64) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0)
	for _, tx := range f.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, txID int64) error {
	for i := range f.transactions {
		if f.transactions[i].ID == txID && f.transactions[i].UserID == userID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}
