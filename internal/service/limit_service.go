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

// LimitService учет трат по месячным лимитам. Месяц определяется текущим моментом, обрезанным
// до первого числа: строки прошлых месяцев не видны и не пополняются.
type LimitService struct {
	runner    storeRunner
	limitRepo LimitRepository
	now       func() time.Time
}

func NewLimitService(u uow.UOW, storeTimeout time.Duration, now func() time.Time) (*LimitService, error) {
	limitRepo, err := uow.GetRepositoryAs[LimitRepository](u, uow.RepositoryName(repoargs.LimitRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if now == nil {
		now = time.Now
	}
	return &LimitService{
		runner:    newStoreRunner(u, storeTimeout),
		limitRepo: limitRepo,
		now:       now,
	}, nil
}

// CurrentLimits возвращает лимиты счета за текущий месяц, отсортированные по id мерчанта.
func (l *LimitService) CurrentLimits(ctx context.Context, accountID int64) ([]domain.SpendingLimit, error) {
	c, cancel := l.runner.withTimeout(ctx)
	defer cancel()

	limits, err := l.limitRepo.GetByAccountAndMonth(c, accountID, domain.MonthStart(l.now()))
	if err != nil {
		return nil, fmt.Errorf("getting current limits: %w", classifyStoreErr(err))
	}
	return limits, nil
}

// Accumulate прибавляет amount к тратам текущего месяца по паре (счет, мерчант) и возвращает новое
// значение. Если строки лимита нет, возвращает domain.ErrNoSuchLimit.
func (l *LimitService) Accumulate(
	ctx context.Context,
	accountID, merchantID int64,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	var spent decimal.Decimal
	err := l.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		var accErr error
		spent, accErr = l.AccumulateIn(c, tx, accountID, merchantID, amount)
		return accErr
	})
	if err != nil {
		return decimal.Zero, err //nolint:wrapcheck
	}
	return spent, nil
}

// AccumulateIn то же, что Accumulate, но внутри транзакции вызывающего.
func (l *LimitService) AccumulateIn(
	ctx context.Context,
	tx uow.TX,
	accountID, merchantID int64,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidArgument, amount)
	}
	repo, repoErr := repoFromTx[LimitRepository](tx, repoargs.LimitRepoName)
	if repoErr != nil {
		return decimal.Zero, repoErr
	}
	spent, err := repo.Accumulate(ctx, repoargs.LimitAccumulate{
		LimitKey: l.currentKey(accountID, merchantID),
		Amount:   amount,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("accumulating limit: %w", noSuchLimit(err))
	}
	return spent, nil
}

// Reset обнуляет траты текущего месяца по паре (счет, мерчант).
func (l *LimitService) Reset(ctx context.Context, accountID, merchantID int64) error {
	return l.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		return l.ResetIn(c, tx, accountID, merchantID)
	})
}

// ResetIn то же, что Reset, но внутри транзакции вызывающего.
func (l *LimitService) ResetIn(ctx context.Context, tx uow.TX, accountID, merchantID int64) error {
	return l.ResetMonthIn(ctx, tx, l.currentKey(accountID, merchantID))
}

// ResetMonthIn обнуляет траты строки лимита месяца key.Month внутри транзакции вызывающего.
func (l *LimitService) ResetMonthIn(ctx context.Context, tx uow.TX, key repoargs.LimitKey) error {
	repo, repoErr := repoFromTx[LimitRepository](tx, repoargs.LimitRepoName)
	if repoErr != nil {
		return repoErr
	}
	key.Month = domain.MonthStart(key.Month)
	if err := repo.Reset(ctx, key); err != nil {
		return fmt.Errorf("resetting limit: %w", noSuchLimit(err))
	}
	return nil
}

// RollOver создает строки лимитов месяца to по образцу месяца from с нулевыми тратами.
// Неизрасходованный остаток не переносится. Повторный вызов ничего не меняет.
func (l *LimitService) RollOver(ctx context.Context, accountID int64, from, to time.Time) (int64, error) {
	var created int64
	err := l.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		var rollErr error
		created, rollErr = l.RollOverIn(c, tx, accountID, from, to)
		return rollErr
	})
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return created, nil
}

// RollOverIn то же, что RollOver, но внутри транзакции вызывающего.
func (l *LimitService) RollOverIn(
	ctx context.Context,
	tx uow.TX,
	accountID int64,
	from, to time.Time,
) (int64, error) {
	repo, repoErr := repoFromTx[LimitRepository](tx, repoargs.LimitRepoName)
	if repoErr != nil {
		return 0, repoErr
	}
	created, err := repo.RollOver(ctx, accountID, domain.MonthStart(from), domain.MonthStart(to))
	if err != nil {
		return 0, fmt.Errorf("rolling over limits: %w", err)
	}
	return created, nil
}

func (l *LimitService) currentKey(accountID, merchantID int64) repoargs.LimitKey {
	return repoargs.LimitKey{
		AccountID:  accountID,
		MerchantID: merchantID,
		Month:      domain.MonthStart(l.now()),
	}
}

func noSuchLimit(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNoSuchLimit, err.Error())
	}
	return err
}
