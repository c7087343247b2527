package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/service"
)

// TransactionServicer интерфейс исключительно для моков.
type TransactionServicer interface {
	Submit(ctx context.Context, args service.PostArgs) (*service.SubmitResult, error)
}

type AccountServicer interface {
	AccountStatus(ctx context.Context, accountID int64) (bool, error)
	AccountTransactions(ctx context.Context, accountID int64) ([]domain.AccountTransaction, error)
	UserAccounts(ctx context.Context, userID int64) ([]domain.Account, error)
	UserSpending(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type LimitServicer interface {
	CurrentLimits(ctx context.Context, accountID int64) ([]domain.SpendingLimit, error)
}

type StatementServicer interface {
	CloseStatement(ctx context.Context, accountID int64) (*service.StatementResult, error)
}
