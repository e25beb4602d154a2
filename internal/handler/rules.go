// internal/handler/rules.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"cardwise/internal/domain"
	"cardwise/internal/storage"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	store storage.RuleStorage
}

func NewRuleHandler(store storage.RuleStorage) *RuleHandler {
	return &RuleHandler{store: store}
}

type RuleRequest struct {
	Kind       string  `json:"kind" validate:"required,oneof=Merchant Category"`
	MatchValue string  `json:"match_value" validate:"required,notblank"`
	RewardRate float64 `json:"reward_rate" validate:"gte=0,lte=100"`
	RewardKind string  `json:"reward_type" validate:"required,oneof=Cashback Points Miles"`
	PointValue float64 `json:"point_value" validate:"gte=0"`
}

// Create godoc
// @Summary Add a reward rule to a card
// @Description Points and Miles rules must carry a positive point_value.
// @Tags rules
// @Accept json
// @Produce json
// @Param id path int true "Card ID"
// @Param request body RuleRequest true "Rule"
// @Success 200 {object} domain.RewardRule
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/cards/{id}/rules [post]
func (h *RuleHandler) Create(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	cardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := domain.RewardRule{
		CardID:     cardID,
		Kind:       domain.MatchKind(req.Kind),
		MatchValue: req.MatchValue,
		RewardRate: req.RewardRate,
		RewardKind: domain.RewardKind(req.RewardKind),
		PointValue: req.PointValue,
	}

	id, err := h.store.CreateRule(c.Request.Context(), userID, rule)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrPointValueRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "point_value is required for Points and Miles rules"})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		default:
			slog.Error("rule creation failed", "error", err, "user_id", userID, "card_id", cardID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		}
		return
	}
	rule.ID = id

	slog.Info("rule created", "user_id", userID, "card_id", cardID, "rule_id", id)
	c.JSON(http.StatusOK, rule)
}

// List godoc
// @Summary List a card's reward rules
// @Tags rules
// @Produce json
// @Param id path int true "Card ID"
// @Success 200 {object} map[string][]domain.RewardRule
// @Router /api/v1/cards/{id}/rules [get]
func (h *RuleHandler) List(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	cardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	rules, err := h.store.ListRules(c.Request.Context(), userID, cardID)
	if err != nil {
		slog.Error("rule listing failed", "error", err, "user_id", userID, "card_id", cardID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// Delete godoc
// @Summary Delete a reward rule
// @Tags rules
// @Produce json
// @Param id path int true "Rule ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/rules/{id} [delete]
func (h *RuleHandler) Delete(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	ruleID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteRule(c.Request.Context(), userID, ruleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		slog.Error("rule deletion failed", "error", err, "user_id", userID, "rule_id", ruleID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
