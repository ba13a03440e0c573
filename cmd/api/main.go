// cmd/api/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voidreamer/simple-budget/internal/access"
	"github.com/voidreamer/simple-budget/internal/auth"
	"github.com/voidreamer/simple-budget/internal/config"
	"github.com/voidreamer/simple-budget/internal/handler"
	"github.com/voidreamer/simple-budget/internal/invite"
	"github.com/voidreamer/simple-budget/internal/middleware"
	"github.com/voidreamer/simple-budget/internal/storage/postgres"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("failed to open database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	store := postgres.NewStorage(pool)
	tokenService := auth.NewTokenService(cfg)
	guard := access.NewGuard(store)
	inviteManager := invite.NewManager(store, guard)

	budgetHandler := handler.NewBudgetHandler(store, guard)
	invitationHandler := handler.NewInvitationHandler(inviteManager)
	financeHandler := handler.NewFinanceHandler(store)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	budgetMiddleware := middleware.NewBudgetMiddleware(guard)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public: the invite landing page calls this before sign-in.
	api.GET("/invitations/validate/:token", invitationHandler.Validate)

	// Dev-only token mint; the identity provider issues real tokens.
	if gin.Mode() != gin.ReleaseMode {
		api.POST("/login", func(c *gin.Context) {
			var req struct {
				UserID string `json:"user_id" binding:"required"`
				Email  string `json:"email"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
				return
			}
			token, err := tokenService.GenerateToken(req.UserID, req.Email)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	}

	authed := api.Group("")
	authed.Use(authMiddleware.RequireAuth())
	{
		authed.POST("/budgets", budgetHandler.Create)
		authed.GET("/budgets", budgetHandler.List)
		authed.GET("/budgets/:id", budgetHandler.Get)
		authed.PUT("/budgets/:id", budgetHandler.Rename)
		authed.DELETE("/budgets/:id", budgetHandler.Delete)

		authed.GET("/budgets/:id/members", budgetHandler.ListMembers)
		authed.POST("/budgets/:id/members", budgetHandler.AddMember)
		authed.DELETE("/budgets/:id/members/:userID", budgetHandler.RemoveMember)

		authed.POST("/budgets/:id/invitations", invitationHandler.Create)
		authed.GET("/budgets/:id/invitations", invitationHandler.List)
		authed.DELETE("/invitations/:id", invitationHandler.Cancel)
		authed.POST("/invitations/accept/:token", invitationHandler.Accept)
	}

	// Budget-scoped routes resolve X-Budget-ID after authentication.
	scoped := authed.Group("")
	scoped.Use(budgetMiddleware.RequireBudget())
	{
		scoped.POST("/categories", financeHandler.CreateCategory)
		scoped.GET("/categories", financeHandler.ListCategories)
		scoped.PUT("/categories/:id", financeHandler.UpdateCategory)
		scoped.DELETE("/categories/:id", financeHandler.DeleteCategory)

		scoped.POST("/subcategories", financeHandler.CreateSubcategory)
		scoped.GET("/subcategories", financeHandler.ListSubcategories)
		scoped.PUT("/subcategories/:id", financeHandler.UpdateSubcategory)
		scoped.DELETE("/subcategories/:id", financeHandler.DeleteSubcategory)

		scoped.POST("/transactions", financeHandler.CreateTransaction)
		scoped.GET("/transactions", financeHandler.ListTransactions)
		scoped.PUT("/transactions/:id", financeHandler.UpdateTransaction)
		scoped.DELETE("/transactions/:id", financeHandler.DeleteTransaction)

		scoped.GET("/budget-summary/:year/:month", financeHandler.BudgetSummary)
	}

	slog.Info("server listening", "port", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
