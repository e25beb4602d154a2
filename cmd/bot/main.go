// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"cardwise/internal/auth"
	"cardwise/internal/config"
	"cardwise/internal/domain"
	"cardwise/internal/recommend"
	"cardwise/internal/storage"
	"cardwise/internal/storage/postgres"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	if cfg.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set")
	}

	db, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}
	defer db.Close()

	store := postgres.NewStorage(db)

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Panic(err)
	}

	log.Printf("Bot started: @%s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		telegramID := update.Message.From.ID
		text := strings.TrimSpace(update.Message.Text)

		var msgText string
		var err error

		switch {
		case text == "/start" || text == "/help":
			msgText = "*cardwise*\n\n" +
				"Commands:\n" +
				"`/link user password` — link your account\n" +
				"`/cards` — list your cards\n" +
				"`/best merchant; category; amount` — best card for a purchase"

		case strings.HasPrefix(text, "/link "):
			msgText, err = handleLink(store, telegramID, strings.TrimSpace(text[6:]))

		case text == "/cards":
			msgText, err = handleCards(store, telegramID)

		case strings.HasPrefix(text, "/best "):
			msgText, err = handleBest(store, telegramID, strings.TrimSpace(text[6:]))

		default:
			msgText = "Unknown command, try /help"
		}

		if err != nil {
			log.Printf("command failed: %v", err)
			msgText = "Something went wrong, try again"
		}

		msg := tgbotapi.NewMessage(chatID, msgText)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := bot.Send(msg); err != nil {
			log.Printf("send failed: %v", err)
		}
	}
}

func handleLink(store *postgres.Storage, telegramID int64, args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "Use: `/link username password`", nil
	}

	ctx := context.Background()
	user, err := store.FindUserByName(ctx, parts[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "Unknown username or wrong password", nil
		}
		return "", err
	}
	if !auth.CheckPassword(user.Password, parts[1]) {
		return "Unknown username or wrong password", nil
	}

	if err := store.LinkTelegramID(ctx, user.ID, telegramID); err != nil {
		return "", err
	}
	return "Linked! Try /cards", nil
}

func linkedUser(store *postgres.Storage, telegramID int64) (*domain.User, string, error) {
	user, err := store.FindUserByTelegramID(context.Background(), telegramID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "Not linked yet — use `/link username password`", nil
		}
		return nil, "", err
	}
	return user, "", nil
}

func handleCards(store *postgres.Storage, telegramID int64) (string, error) {
	user, reply, err := linkedUser(store, telegramID)
	if user == nil {
		return reply, err
	}

	cards, err := store.ListCards(context.Background(), user.ID)
	if err != nil {
		return "", err
	}
	if len(cards) == 0 {
		return "You have no cards yet", nil
	}

	var b strings.Builder
	b.WriteString("Your cards:\n")
	for _, card := range cards {
		fmt.Fprintf(&b, "• %s (%s ••%s) — %.1f%% %s\n",
			card.Name, card.Issuer, card.Last4Digits,
			card.DefaultRewardRate, card.DefaultRewardKind)
	}
	return b.String(), nil
}

func handleBest(store *postgres.Storage, telegramID int64, args string) (string, error) {
	user, reply, err := linkedUser(store, telegramID)
	if user == nil {
		return reply, err
	}

	parts := strings.Split(args, ";")
	if len(parts) != 3 {
		return "Use: `/best merchant; category; amount`", nil
	}
	merchant := strings.TrimSpace(parts[0])
	category := strings.TrimSpace(parts[1])
	amount, convErr := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if convErr != nil || amount <= 0 {
		return "Amount must be a positive number", nil
	}

	cards, rulesByCard, err := store.Snapshot(context.Background(), user.ID)
	if err != nil {
		return "", err
	}

	results := recommend.Recommend(merchant, category, amount, cards, rulesByCard)
	if len(results) == 0 {
		return "You have no cards yet", nil
	}

	var b strings.Builder
	best := results[0]
	fmt.Fprintf(&b, "Best: *%s* — %.2f back (%.1f%% %s)\n\n",
		best.Card.Name, best.CashValue, best.RewardRate, best.RewardKind)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s — %.2f\n", i+1, r.Card.Name, r.CashValue)
	}
	return b.String(), nil
}
