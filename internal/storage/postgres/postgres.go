// internal/storage/postgres/postgres.go
package postgres

import (
	"cardwise/internal/domain"
	"cardwise/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// === UserStorage ===

func (s *Storage) CreateUser(ctx context.Context, username, hashedPassword string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, hashed_password)
		VALUES ($1, $2)
		RETURNING id
	`, username, hashedPassword).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *Storage) FindUserByName(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	var telegramID *int64
	err := s.db.QueryRow(ctx, `
		SELECT id, username, hashed_password, telegram_id
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Password, &telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if telegramID != nil {
		u.TelegramID = *telegramID
	}
	return &u, nil
}

func (s *Storage) FindUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, hashed_password
		FROM users WHERE telegram_id = $1
	`, telegramID).Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find user by telegram id: %w", err)
	}
	u.TelegramID = telegramID
	return &u, nil
}

func (s *Storage) LinkTelegramID(ctx context.Context, userID, telegramID int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET telegram_id = $2 WHERE id = $1
	`, userID, telegramID)
	if err != nil {
		return fmt.Errorf("link telegram id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === CardStorage ===

func (s *Storage) CreateCard(ctx context.Context, card domain.Card) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO cards (user_id, name, issuer, last4_digits, expiry, card_type,
			default_reward_rate, default_reward_kind, default_point_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, card.UserID, card.Name, card.Issuer, card.Last4Digits, card.Expiry, card.CardType,
		card.DefaultRewardRate, card.DefaultRewardKind, card.DefaultPointValue).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create card: %w", err)
	}
	return id, nil
}

func (s *Storage) GetCard(ctx context.Context, userID, cardID int64) (*domain.Card, error) {
	var c domain.Card
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, issuer, last4_digits, expiry, card_type,
			default_reward_rate, default_reward_kind, default_point_value
		FROM cards WHERE id = $1 AND user_id = $2
	`, cardID, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &c.Last4Digits, &c.Expiry,
		&c.CardType, &c.DefaultRewardRate, &c.DefaultRewardKind, &c.DefaultPointValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &c, nil
}

func (s *Storage) ListCards(ctx context.Context, userID int64) ([]domain.Card, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, issuer, last4_digits, expiry, card_type,
			default_reward_rate, default_reward_kind, default_point_value
		FROM cards WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return scanCards(rows)
}

func (s *Storage) UpdateCard(ctx context.Context, card domain.Card) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE cards
		SET name = $3, issuer = $4, last4_digits = $5, expiry = $6, card_type = $7,
			default_reward_rate = $8, default_reward_kind = $9, default_point_value = $10
		WHERE id = $1 AND user_id = $2
	`, card.ID, card.UserID, card.Name, card.Issuer, card.Last4Digits, card.Expiry,
		card.CardType, card.DefaultRewardRate, card.DefaultRewardKind, card.DefaultPointValue)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCard removes a card; its rules go with it via ON DELETE CASCADE.
func (s *Storage) DeleteCard(ctx context.Context, userID, cardID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM cards WHERE id = $1 AND user_id = $2
	`, cardID, userID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) Snapshot(ctx context.Context, userID int64) ([]domain.Card, map[int64][]domain.RewardRule, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, user_id, name, issuer, last4_digits, expiry, card_type,
			default_reward_rate, default_reward_kind, default_point_value
		FROM cards WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot cards: %w", err)
	}
	cards, err := scanCards(rows)
	if err != nil {
		return nil, nil, err
	}

	rulesByCard := make(map[int64][]domain.RewardRule)
	ruleRows, err := tx.Query(ctx, `
		SELECT r.id, r.card_id, r.kind, r.match_value, r.reward_rate, r.reward_kind, r.point_value
		FROM reward_rules r
		JOIN cards c ON c.id = r.card_id
		WHERE c.user_id = $1
		ORDER BY r.card_id, r.id
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot rules: %w", err)
	}
	defer ruleRows.Close()

	for ruleRows.Next() {
		var r domain.RewardRule
		if err := ruleRows.Scan(&r.ID, &r.CardID, &r.Kind, &r.MatchValue, &r.RewardRate, &r.RewardKind, &r.PointValue); err != nil {
			return nil, nil, fmt.Errorf("scan rule: %w", err)
		}
		rulesByCard[r.CardID] = append(rulesByCard[r.CardID], r)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rules rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit snapshot tx: %w", err)
	}

	slog.Debug("snapshot loaded", "user_id", userID, "cards", len(cards))
	return cards, rulesByCard, nil
}

// === RuleStorage ===

func (s *Storage) CreateRule(ctx context.Context, userID int64, rule domain.RewardRule) (int64, error) {
	if (rule.RewardKind == domain.RewardPoints || rule.RewardKind == domain.RewardMiles) && rule.PointValue <= 0 {
		return 0, storage.ErrPointValueRequired
	}

	// Ownership check and insert share one statement so a card deleted
	// concurrently cannot acquire a rule.
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO reward_rules (card_id, kind, match_value, reward_rate, reward_kind, point_value)
		SELECT c.id, $3, $4, $5, $6, $7
		FROM cards c WHERE c.id = $1 AND c.user_id = $2
		RETURNING id
	`, rule.CardID, userID, rule.Kind, rule.MatchValue, rule.RewardRate, rule.RewardKind, rule.PointValue).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("create rule: %w", err)
	}
	return id, nil
}

func (s *Storage) ListRules(ctx context.Context, userID, cardID int64) ([]domain.RewardRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.card_id, r.kind, r.match_value, r.reward_rate, r.reward_kind, r.point_value
		FROM reward_rules r
		JOIN cards c ON c.id = r.card_id
		WHERE r.card_id = $1 AND c.user_id = $2
		ORDER BY r.id
	`, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	rules := make([]domain.RewardRule, 0)
	for rows.Next() {
		var r domain.RewardRule
		if err := rows.Scan(&r.ID, &r.CardID, &r.Kind, &r.MatchValue, &r.RewardRate, &r.RewardKind, &r.PointValue); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rules rows: %w", err)
	}
	return rules, nil
}

func (s *Storage) DeleteRule(ctx context.Context, userID, ruleID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM reward_rules r
		USING cards c
		WHERE r.id = $1 AND c.id = r.card_id AND c.user_id = $2
	`, ruleID, userID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// === TransactionStorage ===

func (s *Storage) CreateTransaction(ctx context.Context, t domain.Transaction) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO transactions (user_id, card_id, date, merchant, category, amount, reward_earned, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, t.UserID, t.CardID, t.Date, t.Merchant, t.Category, t.Amount, t.RewardEarned, t.Note).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

func (s *Storage) GetTransaction(ctx context.Context, userID, txID int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, card_id, date, merchant, category, amount, reward_earned, note
		FROM transactions WHERE id = $1 AND user_id = $2
	`, txID, userID).Scan(&t.ID, &t.UserID, &t.CardID, &t.Date, &t.Merchant, &t.Category,
		&t.Amount, &t.RewardEarned, &t.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (s *Storage) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, card_id, date, merchant, category, amount, reward_earned, note
		FROM transactions WHERE user_id = $1
		ORDER BY date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.CardID, &t.Date, &t.Merchant, &t.Category,
			&t.Amount, &t.RewardEarned, &t.Note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transactions rows: %w", err)
	}
	return txs, nil
}

func (s *Storage) DeleteTransaction(ctx context.Context, userID, txID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, txID, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanCards(rows pgx.Rows) ([]domain.Card, error) {
	defer rows.Close()

	cards := make([]domain.Card, 0)
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &c.Last4Digits, &c.Expiry,
			&c.CardType, &c.DefaultRewardRate, &c.DefaultRewardKind, &c.DefaultPointValue); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cards rows: %w", err)
	}
	return cards, nil
}
