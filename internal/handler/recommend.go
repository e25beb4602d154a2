// internal/handler/recommend.go
package handler

import (
	"log/slog"
	"net/http"

	"cardwise/internal/domain"
	"cardwise/internal/recommend"
	"cardwise/internal/storage"

	"github.com/gin-gonic/gin"
)

type RecommendHandler struct {
	store storage.CardStorage
}

func NewRecommendHandler(store storage.CardStorage) *RecommendHandler {
	return &RecommendHandler{store: store}
}

// RecommendRequest is the purchase context. UserCards narrows the candidate
// set: nil (absent in JSON) means all of the user's cards, a present-but-
// empty array means no candidates at all.
type RecommendRequest struct {
	Merchant  string  `json:"merchant"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	UserCards []int64 `json:"user_cards,omitempty"`
}

type RecommendResponse struct {
	BestCard *domain.RankedResult  `json:"best_card"`
	AllCards []domain.RankedResult `json:"all_cards"`
}

// Recommend godoc
// @Summary Rank the user's cards for a purchase
// @Tags recommend
// @Accept json
// @Produce json
// @Param request body RecommendRequest true "Purchase context"
// @Success 200 {object} RecommendResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/recommend [post]
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
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

	cards, rulesByCard, err := h.store.Snapshot(c.Request.Context(), userID)
	if err != nil {
		slog.Error("snapshot failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not compute recommendations"})
		return
	}

	cards = filterCandidates(cards, req.UserCards)

	results := recommend.Recommend(req.Merchant, req.Category, req.Amount, cards, rulesByCard)

	resp := RecommendResponse{AllCards: results}
	if len(results) > 0 {
		resp.BestCard = &results[0]
	}

	slog.Info("recommendation computed", "user_id", userID, "merchant", req.Merchant,
		"category", req.Category, "candidates", len(results))
	c.JSON(http.StatusOK, resp)
}

// filterCandidates applies the user_cards filter. A nil filter means no
// filter; an empty non-nil filter means an empty candidate set.
func filterCandidates(cards []domain.Card, ids []int64) []domain.Card {
	if ids == nil {
		return cards
	}

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	filtered := make([]domain.Card, 0, len(ids))
	for _, card := range cards {
		if _, ok := wanted[card.ID]; ok {
			filtered = append(filtered, card)
		}
	}
	return filtered
}
