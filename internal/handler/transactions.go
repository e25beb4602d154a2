// internal/handler/transactions.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cardwise/internal/domain"
	"cardwise/internal/recommend"
	"cardwise/internal/storage"

	"github.com/gin-gonic/gin"
)

type TransactionStore interface {
	storage.TransactionStorage
	storage.CardStorage
	storage.RuleStorage
}

type TransactionHandler struct {
	store TransactionStore
}

func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

type TransactionRequest struct {
	CardID   int64   `json:"card_id" validate:"required,gt=0"`
	Date     string  `json:"date,omitempty"` // RFC 3339; defaults to now
	Merchant string  `json:"merchant" validate:"required,notblank"`
	Category string  `json:"category" validate:"required,notblank"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Note     string  `json:"note,omitempty"`
}

// Create godoc
// @Summary Record a transaction
// @Description The reward earned is computed from the card's rules at save
// @Description time and stored with the record; it is never recomputed.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "Transaction"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be RFC 3339"})
			return
		}
		date = parsed
	}

	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	card, err := h.store.GetCard(ctx, userID, req.CardID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		slog.Error("card fetch failed", "error", err, "user_id", userID, "card_id", req.CardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	rules, err := h.store.ListRules(ctx, userID, req.CardID)
	if err != nil {
		slog.Error("rule fetch failed", "error", err, "user_id", userID, "card_id", req.CardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	result := recommend.ResolveCard(req.Merchant, req.Category, req.Amount, *card, rules)

	tx := domain.Transaction{
		UserID:       userID,
		CardID:       req.CardID,
		Date:         date,
		Merchant:     req.Merchant,
		Category:     req.Category,
		Amount:       req.Amount,
		RewardEarned: result.CashValue,
		Note:         req.Note,
	}

	id, err := h.store.CreateTransaction(ctx, tx)
	if err != nil {
		slog.Error("transaction creation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}
	tx.ID = id

	slog.Info("transaction recorded", "user_id", userID, "transaction_id", id,
		"card_id", req.CardID, "reward_earned", tx.RewardEarned)
	c.JSON(http.StatusOK, tx)
}

// List godoc
// @Summary List the user's transactions, newest first
// @Tags transactions
// @Produce json
// @Success 200 {object} map[string][]domain.Transaction
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	txs, err := h.store.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		slog.Error("transaction listing failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Get godoc
// @Summary Get one transaction
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	txID, ok := idParam(c, "id")
	if !ok {
		return
	}

	tx, err := h.store.GetTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		slog.Error("transaction fetch failed", "error", err, "user_id", userID, "transaction_id", txID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Delete godoc
// @Summary Delete a transaction record
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	txID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteTransaction(c.Request.Context(), userID, txID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		slog.Error("transaction deletion failed", "error", err, "user_id", userID, "transaction_id", txID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
