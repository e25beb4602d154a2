// internal/handler/users.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cardwise/internal/auth"
	"cardwise/internal/storage"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	store  storage.UserStorage
	tokens *auth.TokenService
}

func NewUserHandler(store storage.UserStorage, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{store: store, tokens: tokens}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.FindUserByName(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("username lookup failed", "error", err, "username", req.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	id, err := h.store.CreateUser(c.Request.Context(), req.Username, hashed)
	if err != nil {
		slog.Error("user creation failed", "error", err, "username", req.Username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	slog.Info("user registered", "user_id", id, "username", req.Username)
	c.JSON(http.StatusOK, gin.H{"id": id, "username": req.Username})
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.FindUserByName(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		slog.Error("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		slog.Error("token generation failed", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
