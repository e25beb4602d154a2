// internal/handler/cards.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"cardwise/internal/domain"
	"cardwise/internal/storage"

	"github.com/gin-gonic/gin"
)

type CardHandler struct {
	store storage.CardStorage
}

func NewCardHandler(store storage.CardStorage) *CardHandler {
	return &CardHandler{store: store}
}

type CardRequest struct {
	Name              string  `json:"name" validate:"required,notblank"`
	Issuer            string  `json:"issuer" validate:"required,notblank"`
	Last4Digits       string  `json:"last4_digits" validate:"required,last4"`
	Expiry            string  `json:"expiry" validate:"required,yearmonth"`
	CardType          string  `json:"card_type" validate:"required,notblank"`
	DefaultRewardRate float64 `json:"default_reward_rate" validate:"gte=0,lte=100"`
	DefaultRewardKind string  `json:"default_reward_kind" validate:"required,oneof=Cashback Points Miles"`
	DefaultPointValue float64 `json:"default_point_value" validate:"gte=0"`
}

func (r CardRequest) toDomain(userID int64) domain.Card {
	return domain.Card{
		UserID:            userID,
		Name:              r.Name,
		Issuer:            r.Issuer,
		Last4Digits:       r.Last4Digits,
		Expiry:            r.Expiry,
		CardType:          r.CardType,
		DefaultRewardRate: r.DefaultRewardRate,
		DefaultRewardKind: domain.RewardKind(r.DefaultRewardKind),
		DefaultPointValue: r.DefaultPointValue,
	}
}

// Create godoc
// @Summary Add a card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body CardRequest true "Card"
// @Success 200 {object} domain.Card
// @Failure 400 {object} map[string]string
// @Router /api/v1/cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	var req CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	card := req.toDomain(userID)
	id, err := h.store.CreateCard(c.Request.Context(), card)
	if err != nil {
		slog.Error("card creation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}
	card.ID = id

	slog.Info("card created", "user_id", userID, "card_id", id)
	c.JSON(http.StatusOK, card)
}

// List godoc
// @Summary List the user's cards
// @Tags cards
// @Produce json
// @Success 200 {object} map[string][]domain.Card
// @Router /api/v1/cards [get]
func (h *CardHandler) List(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	cards, err := h.store.ListCards(c.Request.Context(), userID)
	if err != nil {
		slog.Error("card listing failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Get godoc
// @Summary Get one card
// @Tags cards
// @Produce json
// @Param id path int true "Card ID"
// @Success 200 {object} domain.Card
// @Failure 404 {object} map[string]string
// @Router /api/v1/cards/{id} [get]
func (h *CardHandler) Get(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	cardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	card, err := h.store.GetCard(c.Request.Context(), userID, cardID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		slog.Error("card fetch failed", "error", err, "user_id", userID, "card_id", cardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Update godoc
// @Summary Replace a card's details
// @Tags cards
// @Accept json
// @Produce json
// @Param id path int true "Card ID"
// @Param request body CardRequest true "Card"
// @Success 200 {object} domain.Card
// @Failure 404 {object} map[string]string
// @Router /api/v1/cards/{id} [put]
func (h *CardHandler) Update(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	cardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := req.toDomain(userID)
	card.ID = cardID
	if err := h.store.UpdateCard(c.Request.Context(), card); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		slog.Error("card update failed", "error", err, "user_id", userID, "card_id", cardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Delete godoc
// @Summary Delete a card and its rules
// @Tags cards
// @Produce json
// @Param id path int true "Card ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/cards/{id} [delete]
func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	cardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteCard(c.Request.Context(), userID, cardID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		slog.Error("card deletion failed", "error", err, "user_id", userID, "card_id", cardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	slog.Info("card deleted", "user_id", userID, "card_id", cardID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
