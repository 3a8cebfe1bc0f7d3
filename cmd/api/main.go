package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/config"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/database"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/handlers"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/logger"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/middleware"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/services"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/validator"
)

// @title           Expenses Tracker API
// @version         1.0
// @description     Multi-account ledger for families: bank accounts, credit cards, and loans kept consistent under linked transfers, with EMI schedules and shared-wallet expense splitting.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	ledgerService := services.NewLedgerService(db)
	walletService := services.NewWalletService(db)

	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	loanHandler := handlers.NewLoanHandler(accountService, ledgerService)
	walletHandler := handlers.NewWalletHandler(walletService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.RequireAuth())

	accounts := protected.Group("/accounts")
	accounts.POST("/banks", accountHandler.CreateBankAccount)
	accounts.GET("/banks", accountHandler.GetBankAccounts)
	accounts.GET("/banks/:id", accountHandler.GetBankAccountByID)
	accounts.PUT("/banks/:id", accountHandler.UpdateBankAccount)
	accounts.DELETE("/banks/:id", accountHandler.DeleteBankAccount)
	accounts.POST("/cards", accountHandler.CreateCreditCard)
	accounts.GET("/cards", accountHandler.GetCreditCards)
	accounts.GET("/cards/:id", accountHandler.GetCreditCardByID)
	accounts.PUT("/cards/:id", accountHandler.UpdateCreditCard)
	accounts.DELETE("/cards/:id", accountHandler.DeleteCreditCard)
	accounts.GET("/:type/:id/transactions", transactionHandler.GetAccountTransactions)

	loans := protected.Group("/loans")
	loans.POST("", accountHandler.CreateLoan)
	loans.GET("", accountHandler.GetLoans)
	loans.GET("/:id", accountHandler.GetLoanByID)
	loans.PUT("/:id", accountHandler.UpdateLoan)
	loans.DELETE("/:id", accountHandler.DeleteLoan)
	loans.POST("/:id/emis", loanHandler.PayEMIs)
	loans.GET("/:id/schedule", loanHandler.GetSchedule)
	loans.POST("/calculator", loanHandler.Calculate)
	loans.POST("/prepayment", loanHandler.Prepayment)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	protected.GET("/reconciliations", transactionHandler.GetReconciliations)

	wallets := protected.Group("/wallets")
	wallets.POST("", walletHandler.CreateWallet)
	wallets.GET("", walletHandler.GetWallets)
	wallets.POST("/join", walletHandler.JoinWallet)
	wallets.GET("/:id", walletHandler.GetWalletByID)
	wallets.DELETE("/:id", walletHandler.DeleteWallet)
	wallets.POST("/:id/transactions", walletHandler.AddSharedTransaction)
	wallets.GET("/:id/transactions", walletHandler.GetWalletTransactions)
	wallets.GET("/:id/balances", walletHandler.GetWalletBalances)
	wallets.GET("/:id/settlements", walletHandler.GetSuggestedSettlements)
	wallets.POST("/:id/settlements", walletHandler.RecordSettlement)

	log.Infof("Starting expenses tracker API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
