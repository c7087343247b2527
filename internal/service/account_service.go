package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/pkg/uow"
	"github.com/shopspring/decimal"
)

type AccountService struct {
	runner          storeRunner
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	now             func() time.Time
}

func NewAccountService(u uow.UOW, storeTimeout time.Duration, now func() time.Time) (*AccountService, error) {
	accountRepo, accErr := uow.GetRepositoryAs[AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accErr != nil {
		return nil, accErr //nolint:wrapcheck
	}
	transactionRepo, trErr :=
		uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if trErr != nil {
		return nil, trErr //nolint:wrapcheck
	}
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		runner:          newStoreRunner(u, storeTimeout),
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		now:             now,
	}, nil
}

// AccountStatus возвращает true, если счет пригоден для операций. Несуществующий счет непригоден.
func (a *AccountService) AccountStatus(ctx context.Context, accountID int64) (bool, error) {
	c, cancel := a.runner.withTimeout(ctx)
	defer cancel()

	account, err := a.accountRepo.FindByID(c, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("getting account status: %w", classifyStoreErr(err))
	}
	return account.IsUsable(a.now()), nil
}

// AccountTransactions возвращает транзакции пригодного счета от новых к старым.
// Для непригодного счета возвращает domain.ErrAccountUnusable.
func (a *AccountService) AccountTransactions(
	ctx context.Context,
	accountID int64,
) ([]domain.AccountTransaction, error) {
	c, cancel := a.runner.withTimeout(ctx)
	defer cancel()

	account, err := a.accountRepo.FindByID(c, accountID)
	if err != nil {
		return nil, fmt.Errorf("getting account transactions: %w", classifyStoreErr(err))
	}
	if !account.IsUsable(a.now()) {
		return nil, fmt.Errorf("getting account transactions: account %d: %w", accountID, domain.ErrAccountUnusable)
	}

	transactions, trErr := a.transactionRepo.GetByAccountID(c, accountID)
	if trErr != nil {
		return nil, fmt.Errorf("getting account transactions: %w", classifyStoreErr(trErr))
	}
	return transactions, nil
}

// UserAccounts возвращает пригодные счета пользователя.
func (a *AccountService) UserAccounts(ctx context.Context, userID int64) ([]domain.Account, error) {
	c, cancel := a.runner.withTimeout(ctx)
	defer cancel()

	accounts, err := a.accountRepo.GetUsableByUserID(c, userID, a.now())
	if err != nil {
		return nil, fmt.Errorf("getting user accounts: %w", classifyStoreErr(err))
	}
	return accounts, nil
}

// UserSpending возвращает сумму исходящих транзакций со счетов пользователя за текущий месяц.
func (a *AccountService) UserSpending(ctx context.Context, userID int64) (decimal.Decimal, error) {
	c, cancel := a.runner.withTimeout(ctx)
	defer cancel()

	spent, err := a.transactionRepo.SumOutgoingByUser(c, userID, domain.MonthStart(a.now()))
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting user spending: %w", classifyStoreErr(err))
	}
	return spent, nil
}
