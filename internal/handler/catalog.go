// internal/handler/catalog.go
package handler

import (
	"log/slog"
	"net/http"

	"cardwise/internal/catalog"
	"cardwise/internal/domain"
	"cardwise/internal/storage"

	"github.com/gin-gonic/gin"
)

type CatalogStore interface {
	storage.CardStorage
	storage.RuleStorage
}

type CatalogHandler struct {
	catalog *catalog.Catalog
	store   CatalogStore
}

func NewCatalogHandler(cat *catalog.Catalog, store CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalog: cat, store: store}
}

// List godoc
// @Summary List predefined cards
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]catalog.Card
// @Router /api/v1/catalog [get]
func (h *CatalogHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cards": h.catalog.All()})
}

type FromCatalogRequest struct {
	CardKey     string `json:"card_key" validate:"required,notblank"`
	Last4Digits string `json:"last4_digits" validate:"required,last4"`
	Expiry      string `json:"expiry" validate:"required,yearmonth"`
}

// FromCatalog godoc
// @Summary Add a card from the predefined catalog
// @Description Creates the card and all of its catalog reward rules for the
// @Description authenticated user.
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body FromCatalogRequest true "Catalog key plus card details"
// @Success 200 {object} domain.Card
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/catalog/add [post]
func (h *CatalogHandler) FromCatalog(c *gin.Context) {
	var req FromCatalogRequest
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

	def, found := h.catalog.ByKey(req.CardKey)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown catalog card"})
		return
	}

	card := domain.Card{
		UserID:            userID,
		Name:              def.Name,
		Issuer:            def.Issuer,
		Last4Digits:       req.Last4Digits,
		Expiry:            req.Expiry,
		CardType:          def.CardType,
		DefaultRewardRate: def.DefaultRewardRate,
		DefaultRewardKind: def.DefaultRewardKind,
		DefaultPointValue: def.DefaultPointValue,
	}

	ctx := c.Request.Context()
	id, err := h.store.CreateCard(ctx, card)
	if err != nil {
		slog.Error("catalog card creation failed", "error", err, "user_id", userID, "card_key", req.CardKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add card"})
		return
	}
	card.ID = id

	for _, r := range def.Rules {
		rule := domain.RewardRule{
			CardID:     id,
			Kind:       r.Kind,
			MatchValue: r.MatchValue,
			RewardRate: r.RewardRate,
			RewardKind: r.RewardKind,
			PointValue: r.PointValue,
		}
		if _, err := h.store.CreateRule(ctx, userID, rule); err != nil {
			slog.Error("catalog rule creation failed", "error", err,
				"user_id", userID, "card_id", id, "match_value", r.MatchValue)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add card rules"})
			return
		}
	}

	slog.Info("card added from catalog", "user_id", userID, "card_id", id, "card_key", req.CardKey)
	c.JSON(http.StatusOK, card)
}
