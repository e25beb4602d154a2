// cmd/api/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"cardwise/internal/auth"
	"cardwise/internal/catalog"
	"cardwise/internal/config"
	"cardwise/internal/handler"
	"cardwise/internal/middleware"
	"cardwise/internal/storage/postgres"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("DB ping failed: %v", err)
	}
	slog.Info("connected to PostgreSQL")

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("failed to load card catalog: %v", err)
	}
	slog.Info("card catalog loaded", "cards", len(cat.All()))

	store := postgres.NewStorage(pool)

	tokenService := auth.NewTokenService(cfg)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	userHandler := handler.NewUserHandler(store, tokenService)
	cardHandler := handler.NewCardHandler(store)
	ruleHandler := handler.NewRuleHandler(store)
	txHandler := handler.NewTransactionHandler(store)
	recommendHandler := handler.NewRecommendHandler(store)
	catalogHandler := handler.NewCatalogHandler(cat, store)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/v1/users/register", userHandler.Register)
	router.POST("/api/v1/users/login", userHandler.Login)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		v1.GET("/cards", cardHandler.List)
		v1.POST("/cards", cardHandler.Create)
		v1.GET("/cards/:id", cardHandler.Get)
		v1.PUT("/cards/:id", cardHandler.Update)
		v1.DELETE("/cards/:id", cardHandler.Delete)

		v1.GET("/cards/:id/rules", ruleHandler.List)
		v1.POST("/cards/:id/rules", ruleHandler.Create)
		v1.DELETE("/rules/:id", ruleHandler.Delete)

		v1.GET("/transactions", txHandler.List)
		v1.POST("/transactions", txHandler.Create)
		v1.GET("/transactions/:id", txHandler.Get)
		v1.DELETE("/transactions/:id", txHandler.Delete)

		v1.POST("/recommend", recommendHandler.Recommend)

		v1.GET("/catalog", catalogHandler.List)
		v1.POST("/catalog/add", catalogHandler.FromCatalog)
	}

	slog.Info("server starting", "addr", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
