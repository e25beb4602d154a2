// internal/storage/storage.go
package storage

import (
	"cardwise/internal/domain"
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced entity does not exist or does
// not belong to the requesting user.
var ErrNotFound = errors.New("not found")

// ErrPointValueRequired is returned when a Points/Miles rule is created
// without a point value.
var ErrPointValueRequired = errors.New("point value required for Points/Miles rules")

type UserStorage interface {
	CreateUser(ctx context.Context, username, hashedPassword string) (int64, error)
	FindUserByName(ctx context.Context, username string) (*domain.User, error)
	FindUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	LinkTelegramID(ctx context.Context, userID, telegramID int64) error
}

type CardStorage interface {
	CreateCard(ctx context.Context, card domain.Card) (int64, error)
	GetCard(ctx context.Context, userID, cardID int64) (*domain.Card, error)
	ListCards(ctx context.Context, userID int64) ([]domain.Card, error)
	UpdateCard(ctx context.Context, card domain.Card) error
	DeleteCard(ctx context.Context, userID, cardID int64) error

	// Snapshot reads all of a user's cards plus the rules for those cards
	// in a single transaction, so no rule can reference a card deleted
	// mid-read.
	Snapshot(ctx context.Context, userID int64) ([]domain.Card, map[int64][]domain.RewardRule, error)
}

type RuleStorage interface {
	CreateRule(ctx context.Context, userID int64, rule domain.RewardRule) (int64, error)
	ListRules(ctx context.Context, userID, cardID int64) ([]domain.RewardRule, error)
	DeleteRule(ctx context.Context, userID, ruleID int64) error
}

type TransactionStorage interface {
	CreateTransaction(ctx context.Context, tx domain.Transaction) (int64, error)
	GetTransaction(ctx context.Context, userID, txID int64) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID int64) error
}
