package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/kopilka/internal/transport/api/middlewares"
)

const (
	// DefaultServiceTimeout покрывает все транзакции unit of work одного вызова сервиса.
	DefaultServiceTimeout = 15 * time.Second
)

const (
	RouteGroup               = "/api"
	TransactionsRoute        = "/transactions"
	AccountStatusRoute       = "/accounts/:id/status"
	AccountLimitsRoute       = "/accounts/:id/limits"
	AccountTransactionsRoute = "/accounts/:id/transactions"
	AccountStatementRoute    = "/accounts/:id/statement"
	UserAccountsRoute        = "/users/:id/accounts"
	UserSpendingRoute        = "/users/:id/spending"
)

type RouterArgs struct {
	Logger             *logrus.Logger
	TransactionService TransactionServicer
	AccountService     AccountServicer
	LimitService       LimitServicer
	StatementService   StatementServicer
	APIKey             string
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", middlewares.APIKeyHeader, middlewares.RequestIDHeader},
		ExposeHeaders:   []string{middlewares.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(middlewares.Errors())

	transactionHandler := NewTransactionHandler(args.TransactionService)
	accountHandler := NewAccountHandler(args.AccountService, args.LimitService, args.StatementService)
	userHandler := NewUserHandler(args.AccountService)

	api := r.Group(RouteGroup)
	// все роуты группы требуют ключ доступа.
	api.Use(middlewares.APIKeyRequired(args.APIKey))

	api.POST(TransactionsRoute, transactionHandler.Create)

	api.GET(AccountStatusRoute, accountHandler.Status)
	api.GET(AccountLimitsRoute, accountHandler.Limits)
	api.GET(AccountTransactionsRoute, accountHandler.Transactions)
	api.POST(AccountStatementRoute, accountHandler.CloseStatement)

	api.GET(UserAccountsRoute, userHandler.Accounts)
	api.GET(UserSpendingRoute, userHandler.Spending)
	return r, nil
}
