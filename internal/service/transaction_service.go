package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/pkg/uow"
)

// TransactionService проводит движения денег и следит за лимитами трат.
type TransactionService struct {
	runner storeRunner
	limits *LimitService
	now    func() time.Time
}

func NewTransactionService(
	u uow.UOW,
	limits *LimitService,
	storeTimeout time.Duration,
	now func() time.Time,
) *TransactionService {
	if now == nil {
		now = time.Now
	}
	return &TransactionService{
		runner: newStoreRunner(u, storeTimeout),
		limits: limits,
		now:    now,
	}
}

type SubmitResult struct {
	Transaction *domain.Transaction
	// Protection защитная транзакция, если она была проведена.
	Protection *domain.Transaction
	// LimitExisted у счета-источника есть лимит текущего месяца на мерчанта получателя.
	LimitExisted bool
	// ProtectionTriggered защитная транзакция проведена.
	ProtectionTriggered bool
	// Warning ошибка шагов после фиксации основной транзакции (учет лимита, защитная транзакция).
	// Основная транзакция при этом остается проведенной.
	Warning error
}

// Recorded основная транзакция записана в журнал.
func (r *SubmitResult) Recorded() bool {
	return r != nil && r.Transaction != nil
}

// Submit проводит движение денег.
//
// Алгоритм работы:
//  1. В одной транзакции unit of work блокирует счета, проверяет источник, пишет транзакцию и меняет балансы.
//     С этого момента движение считается состоявшимся.
//  2. Если источник и получатель - счета и у источника есть лимит текущего месяца на мерчанта, которому
//     принадлежит счет получателя, прибавляет сумму к тратам (отдельная транзакция unit of work).
//  3. Если траты превысили лимит, переводит всю сумму исходной транзакции со счета-источника на защищенный
//     счет его владельца (третья транзакция unit of work). Защитная транзакция лимиты не проверяет.
//
// Ошибки шагов 2 и 3 не отменяют основную транзакцию и возвращаются в SubmitResult.Warning.
// Ошибки шага 1: domain.ErrInvalidArgument, domain.ErrAccountUnusable, domain.ErrInsufficientFunds,
// domain.ErrRecordNotFound, domain.ErrStoreUnavailable. В этих случаях состояние не меняется.
func (t *TransactionService) Submit(ctx context.Context, args PostArgs) (*SubmitResult, error) {
	if err := args.validate(); err != nil {
		return nil, fmt.Errorf("submitting transaction: %w", err)
	}
	now := t.now()

	primary, err := t.postUnit(ctx, args, now)
	if err != nil {
		return nil, fmt.Errorf("submitting transaction: %w", err)
	}
	result := &SubmitResult{Transaction: primary.transaction}

	if !args.From.IsAccount() || !args.To.IsAccount() {
		return result, nil
	}

	breached, limitErr := t.evaluateLimit(ctx, args, result)
	if limitErr != nil {
		result.Warning = fmt.Errorf("evaluating limit: %w", limitErr)
		return result, nil
	}
	if !breached {
		return result, nil
	}

	protection, protErr := t.protect(ctx, primary, now)
	if protErr != nil {
		result.Warning = fmt.Errorf("protecting transaction %d: %w", primary.transaction.ID, protErr)
		return result, nil
	}
	result.Protection = protection
	result.ProtectionTriggered = true
	return result, nil
}

func (t *TransactionService) postUnit(ctx context.Context, args PostArgs, now time.Time) (*posting, error) {
	var p *posting
	err := t.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		var postErr error
		p, postErr = post(c, tx, args, now)
		return postErr
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return p, nil
}

// evaluateLimit ищет лимит источника на мерчанта, которому принадлежит счет получателя, и начисляет
// на него сумму. Возвращает true, если после начисления траты превысили лимит.
func (t *TransactionService) evaluateLimit(
	ctx context.Context,
	args PostArgs,
	result *SubmitResult,
) (bool, error) {
	limits, err := t.limits.CurrentLimits(ctx, args.From.ID)
	if err != nil {
		return false, err
	}

	var limit *domain.SpendingLimit
	for i := range limits {
		if merchantAccountID := limits[i].MerchantAccountID; merchantAccountID != nil &&
			*merchantAccountID == args.To.ID {
			limit = &limits[i]
			break
		}
	}
	if limit == nil {
		return false, nil
	}

	spent, accErr := t.limits.Accumulate(ctx, args.From.ID, limit.MerchantID, args.Amount)
	if accErr != nil {
		if errors.Is(accErr, domain.ErrNoSuchLimit) {
			// строка исчезла из текущего месяца (смена месяца между чтением и начислением): лимит не применяется.
			return false, nil
		}
		result.LimitExisted = true
		return false, accErr
	}
	result.LimitExisted = true

	limit.Spent = spent
	return limit.IsBreached(), nil
}

// protect переводит сумму основной транзакции на защищенный счет владельца источника. Защищенный счет
// каждый раз ищется заново через владельца.
func (t *TransactionService) protect(ctx context.Context, primary *posting, now time.Time) (*domain.Transaction, error) {
	source := primary.source
	if source == nil || source.UserID == nil {
		return nil, domain.ErrNoProtectionAccount
	}

	var protection *posting
	err := t.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, repoErr := repoFromTx[AccountRepository](tx, repoargs.AccountRepoName)
		if repoErr != nil {
			return repoErr
		}
		protected, findErr := accountRepo.FindUsableByUserAndKind(c, *source.UserID, domain.AccountKindProtected, now)
		if findErr != nil {
			if errors.Is(findErr, domain.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", *source.UserID, domain.ErrNoProtectionAccount)
			}
			return findErr //nolint:wrapcheck
		}

		var postErr error
		protection, postErr = post(c, tx, PostArgs{
			From:    primary.transaction.From,
			To:      domain.AccountParty(protected.ID),
			Kind:    domain.TransactionKindProtection,
			Amount:  primary.transaction.Amount,
			Comment: primary.transaction.Comment,
		}, now)
		return postErr
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return protection.transaction, nil
}
