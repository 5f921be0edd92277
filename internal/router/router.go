// Package router wires services, handlers and middleware into the HTTP API.
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/database"
	_ "fintrack/internal/docs" // swagger spec
	"fintrack/internal/handlers"
	"fintrack/internal/ledger"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/uuid"
)

// New builds the API engine. Metrics are registered on reg and served from
// /metrics.
func New(cfg *config.Config, db *gorm.DB, reg *prometheus.Registry) (*gin.Engine, error) {
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())

	r.Use(gin.Recovery())
	r.Use(requestid.New(requestid.WithGenerator(uuid.New)))

	if len(cfg.CORSAllowOrigins) > 0 {
		logger.Get().Debugw("CORS enabled", "origins", cfg.CORSAllowOrigins)
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
			ExposeHeaders: []string{"X-Request-Id"},
		}))
	}

	r.Use(middleware.RequestLogging())
	r.Use(metrics.Middleware())
	r.Use(middleware.ErrorHandler())

	if cfg.EnablePprof {
		pprof.Register(r)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	attachRoutes(r.Group("/api/v1"), cfg, db)
	return r, nil
}

func attachRoutes(v1 *gin.RouterGroup, cfg *config.Config, db *gorm.DB) {
	engine := ledger.NewEngine(database.NewUnitOfWork(db))

	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db, engine, cfg.AccountDelete)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, engine)
	budgetService := services.NewBudgetService(db)
	summaryService := services.NewSummaryService(db)
	ledgerService := services.NewLedgerService(db)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	adminHandler := handlers.NewAdminHandler(ledgerService, auditService)

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	v1.POST("/token", authHandler.Token)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/users/me", authHandler.GetMe)

	user := protected.Group("/users/:user_id")
	user.Use(middleware.RequireSelf("user_id"))

	accounts := user.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:account_id", accountHandler.GetAccountByID)
	accounts.PUT("/:account_id", accountHandler.UpdateAccount)
	accounts.DELETE("/:account_id", accountHandler.DeleteAccount)
	accounts.GET("/:account_id/transactions", transactionHandler.GetAccountTransactions)

	transactions := user.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:transaction_id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:transaction_id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:transaction_id", transactionHandler.DeleteTransaction)

	budgets := user.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:budget_id", budgetHandler.GetBudget)
	budgets.PUT("/:budget_id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:budget_id", budgetHandler.DeleteBudget)

	user.GET("/summary", summaryHandler.GetSummary)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:category_id", categoryHandler.GetCategoryByID)
	categories.PUT("/:category_id", categoryHandler.UpdateCategory)
	categories.DELETE("/:category_id", categoryHandler.DeleteCategory)

	// Operator routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.AdminAPIKey))
	admin.GET("/reconcile", adminHandler.Reconcile)
}
