package service

import (
	"context"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	LockByIDs(ctx context.Context, ids []int64) ([]domain.Account, error)
	AdjustBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	FindUsableByUserAndKind(
		ctx context.Context,
		userID int64,
		kind domain.AccountKind,
		now time.Time,
	) (*domain.Account, error)
	GetUsableByUserID(ctx context.Context, userID int64, now time.Time) ([]domain.Account, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error)
	GetByAccountID(ctx context.Context, accountID int64) ([]domain.AccountTransaction, error)
	SumOutgoingByUser(ctx context.Context, userID int64, month time.Time) (decimal.Decimal, error)
}

type LimitRepository interface {
	GetByAccountAndMonth(ctx context.Context, accountID int64, month time.Time) ([]domain.SpendingLimit, error)
	Accumulate(ctx context.Context, args repoargs.LimitAccumulate) (decimal.Decimal, error)
	Reset(ctx context.Context, key repoargs.LimitKey) error
	RollOver(ctx context.Context, accountID int64, from, to time.Time) (int64, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	GetDueMainAccounts(ctx context.Context, asOf time.Time, limit uint) ([]int64, error)
	AdvanceStatementDate(ctx context.Context, userID int64, to time.Time) error
}
