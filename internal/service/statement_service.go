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

const (
	DefaultFundAccountID      int64 = 12
	DefaultFundName                 = `"Благо.ру"`
	DefaultCollectionsPartyID int64 = 4242
)

var DefaultMaintenanceFee = decimal.RequireFromString("20.00")

type StatementArgs struct {
	// FundAccountID счет фонда, куда уходят средства при сильном превышении лимита.
	FundAccountID int64
	FundName      string
	// CollectionsPartyID внешний получатель платы за обслуживание.
	CollectionsPartyID int64
	MaintenanceFee     decimal.Decimal
}

// StatementService закрывает расчетный период счета.
type StatementService struct {
	runner      storeRunner
	limits      *LimitService
	accountRepo AccountRepository
	limitRepo   LimitRepository
	userRepo    UserRepository
	args        StatementArgs
	now         func() time.Time
}

func NewStatementService(
	u uow.UOW,
	limits *LimitService,
	args StatementArgs,
	storeTimeout time.Duration,
	now func() time.Time,
) (*StatementService, error) {
	accountRepo, accErr := uow.GetRepositoryAs[AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accErr != nil {
		return nil, accErr //nolint:wrapcheck
	}
	limitRepo, limErr := uow.GetRepositoryAs[LimitRepository](u, uow.RepositoryName(repoargs.LimitRepoName))
	if limErr != nil {
		return nil, limErr //nolint:wrapcheck
	}
	userRepo, userErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userErr != nil {
		return nil, userErr //nolint:wrapcheck
	}
	if args.MaintenanceFee.IsNegative() {
		return nil, fmt.Errorf("%w: negative maintenance fee %s", domain.ErrInvalidArgument, args.MaintenanceFee)
	}
	if now == nil {
		now = time.Now
	}
	return &StatementService{
		runner:      newStoreRunner(u, storeTimeout),
		limits:      limits,
		accountRepo: accountRepo,
		limitRepo:   limitRepo,
		userRepo:    userRepo,
		args:        args,
		now:         now,
	}, nil
}

type StatementResult struct {
	// Period первое число закрытого месяца.
	Period time.Time
	// Processed количество успешно обработанных строк лимитов.
	Processed int
	// Failed количество строк, которые обработать не удалось.
	Failed      int
	SweptToFund decimal.Decimal
	ChargedBack decimal.Decimal
	FeeCharged  decimal.Decimal
	// FeeUnpaid плата за обслуживание, которую не удалось списать: на основном счете не хватило
	// средств или он непригоден. Период при этом все равно закрывается.
	FeeUnpaid decimal.Decimal
}

// CloseStatement закрывает текущий месяц основного счета accountID.
//
// Алгоритм работы:
//  1. Для каждой строки лимита месяца с превышением (spent > cap) переводит превышение
//     с защищенного счета: в фонд, если spent > 2*cap, иначе обратно на основной счет. Затем обнуляет
//     траты строки. Перевод и обнуление выполняются в одной транзакции unit of work.
//     Строки без превышения только обнуляются.
//  2. Ошибка одной строки не прерывает обработку остальных.
//  3. Создает лимиты следующего месяца, списывает плату за обслуживание и переносит дату выписки
//     владельца на первое число месяца, следующего за новым (одна транзакция unit of work).
//
// Если часть строк обработать не удалось, вместе с результатом возвращается *domain.PartialSweepError.
func (s *StatementService) CloseStatement(ctx context.Context, accountID int64) (*StatementResult, error) {
	now := s.now()
	mainAccount, err := s.mainAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("closing statement: %w", err)
	}
	return s.closePeriod(ctx, mainAccount, domain.MonthStart(now), now)
}

// CloseDueStatement закрывает месяц, который завершился к дате выписки владельца счета accountID.
// Дата выписки 1 ноября закрывает октябрь и создает лимиты ноября. Если дата выписки еще не наступила,
// возвращает domain.ErrInvalidArgument.
func (s *StatementService) CloseDueStatement(ctx context.Context, accountID int64) (*StatementResult, error) {
	now := s.now()
	mainAccount, err := s.mainAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("closing due statement: %w", err)
	}

	c, cancel := s.runner.withTimeout(ctx)
	defer cancel()
	user, userErr := s.userRepo.FindByID(c, *mainAccount.UserID)
	if userErr != nil {
		return nil, fmt.Errorf("closing due statement: %w", classifyStoreErr(userErr))
	}
	if user.StatementDate.After(now) {
		return nil, fmt.Errorf("%w: statement of user %d is due on %s",
			domain.ErrInvalidArgument, user.ID, user.StatementDate.Format(time.DateOnly))
	}

	period := domain.MonthStart(user.StatementDate).AddDate(0, -1, 0)
	return s.closePeriod(ctx, mainAccount, period, now)
}

// DueStatements возвращает основные счета, у владельцев которых наступила дата выписки.
func (s *StatementService) DueStatements(ctx context.Context, limit uint) ([]int64, error) {
	c, cancel := s.runner.withTimeout(ctx)
	defer cancel()

	ids, err := s.userRepo.GetDueMainAccounts(c, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("getting due statements: %w", classifyStoreErr(err))
	}
	return ids, nil
}

func (s *StatementService) closePeriod(
	ctx context.Context,
	mainAccount *domain.Account,
	period, now time.Time,
) (*StatementResult, error) {
	limits, limErr := s.periodLimits(ctx, mainAccount.ID, period)
	if limErr != nil {
		return nil, fmt.Errorf("closing statement: %w", limErr)
	}

	result := &StatementResult{
		Period:      period,
		SweptToFund: decimal.Zero,
		ChargedBack: decimal.Zero,
		FeeCharged:  decimal.Zero,
		FeeUnpaid:   decimal.Zero,
	}
	partial := domain.NewPartialSweepError(mainAccount.ID)

	var protected *domain.Account
	for _, limit := range limits {
		if limit.IsBreached() && protected == nil {
			var findErr error
			protected, findErr = s.protectedAccount(ctx, mainAccount, now)
			if findErr != nil {
				partial.Add(&domain.LimitSweepError{MerchantID: limit.MerchantID, Err: findErr})
				continue
			}
		}
		if err := s.sweepRow(ctx, mainAccount, protected, limit, period, now, result); err != nil {
			partial.Add(&domain.LimitSweepError{MerchantID: limit.MerchantID, Err: err})
			continue
		}
		result.Processed++
	}
	result.Failed = partial.Failed

	if err := s.finish(ctx, mainAccount, period, now, result); err != nil {
		return result, fmt.Errorf("closing statement: %w", errors.Join(err, partial.ErrorOrNil()))
	}
	return result, partial.ErrorOrNil()
}

func (s *StatementService) mainAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	c, cancel := s.runner.withTimeout(ctx)
	defer cancel()

	mainAccount, err := s.accountRepo.FindByID(c, accountID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	if mainAccount.Kind != domain.AccountKindMain || mainAccount.UserID == nil {
		return nil, fmt.Errorf("%w: account %d is not a main account", domain.ErrInvalidArgument, accountID)
	}
	return mainAccount, nil
}

func (s *StatementService) periodLimits(
	ctx context.Context,
	accountID int64,
	period time.Time,
) ([]domain.SpendingLimit, error) {
	c, cancel := s.runner.withTimeout(ctx)
	defer cancel()

	limits, err := s.limitRepo.GetByAccountAndMonth(c, accountID, period)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	return limits, nil
}

func (s *StatementService) protectedAccount(
	ctx context.Context,
	mainAccount *domain.Account,
	now time.Time,
) (*domain.Account, error) {
	c, cancel := s.runner.withTimeout(ctx)
	defer cancel()

	userID := *mainAccount.UserID
	protected, err := s.accountRepo.FindUsableByUserAndKind(c, userID, domain.AccountKindProtected, now)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNoProtectionAccount)
		}
		return nil, classifyStoreErr(err)
	}
	return protected, nil
}

// sweepRow обрабатывает одну строку лимита. Суммы попадают в result только после фиксации.
func (s *StatementService) sweepRow(
	ctx context.Context,
	mainAccount, protected *domain.Account,
	limit domain.SpendingLimit,
	period, now time.Time,
	result *StatementResult,
) error {
	var sweep *PostArgs
	if limit.IsBreached() {
		sweep = s.sweepArgs(mainAccount, protected, limit)
	}

	err := s.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		if sweep != nil {
			if _, postErr := post(c, tx, *sweep, now); postErr != nil {
				return postErr
			}
		}
		return s.limits.ResetMonthIn(c, tx, repoargs.LimitKey{
			AccountID:  limit.AccountID,
			MerchantID: limit.MerchantID,
			Month:      period,
		})
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	if sweep != nil {
		if sweep.Kind == domain.TransactionKindChargeback {
			result.ChargedBack = result.ChargedBack.Add(sweep.Amount)
		} else {
			result.SweptToFund = result.SweptToFund.Add(sweep.Amount)
		}
	}
	return nil
}

// sweepArgs при spent > 2*cap превышение уходит в фонд, иначе возвращается на основной счет.
func (s *StatementService) sweepArgs(
	mainAccount, protected *domain.Account,
	limit domain.SpendingLimit,
) *PostArgs {
	overage := limit.Overage()
	if limit.Spent.GreaterThan(limit.Cap.Mul(decimal.NewFromInt(2))) {
		return &PostArgs{
			From:    domain.AccountParty(protected.ID),
			To:      domain.AccountParty(s.args.FundAccountID),
			Kind:    domain.TransactionKindTransfer,
			Amount:  overage,
			Comment: "Перевод защищенных средств в фонд " + s.args.FundName,
		}
	}
	return &PostArgs{
		From:    domain.AccountParty(protected.ID),
		To:      domain.AccountParty(mainAccount.ID),
		Kind:    domain.TransactionKindChargeback,
		Amount:  overage,
		Comment: "Возврат защищенных средств",
	}
}

// finish создает лимиты следующего за period месяца, списывает плату за обслуживание и переносит дату
// выписки. Нехватка средств или непригодность основного счета не мешают закрыть период: плата
// попадает в FeeUnpaid.
func (s *StatementService) finish(
	ctx context.Context,
	mainAccount *domain.Account,
	period, now time.Time,
	result *StatementResult,
) error {
	fee := s.args.MaintenanceFee
	next := period.AddDate(0, 1, 0)
	var unpaid bool
	err := s.runner.do(ctx, func(c context.Context, tx uow.TX) error {
		if _, rollErr := s.limits.RollOverIn(c, tx, mainAccount.ID, period, next); rollErr != nil {
			return rollErr
		}
		if fee.IsPositive() {
			_, postErr := post(c, tx, PostArgs{
				From:    domain.AccountParty(mainAccount.ID),
				To:      domain.ExternalParty(s.args.CollectionsPartyID),
				Kind:    domain.TransactionKindFee,
				Amount:  fee,
				Comment: "Комиссия за использование копилки",
			}, now)
			switch {
			case postErr == nil:
			case errors.Is(postErr, domain.ErrInsufficientFunds), errors.Is(postErr, domain.ErrAccountUnusable):
				// проверки выполняются до записи, транзакция остается рабочей.
				unpaid = true
			default:
				return fmt.Errorf("charging maintenance fee: %w", postErr)
			}
		}
		userRepo, repoErr := repoFromTx[UserRepository](tx, repoargs.UserRepoName)
		if repoErr != nil {
			return repoErr
		}
		return userRepo.AdvanceStatementDate(c, *mainAccount.UserID, next.AddDate(0, 1, 0)) //nolint:wrapcheck
	})
	if err != nil {
		return err //nolint:wrapcheck
	}
	if unpaid {
		result.FeeUnpaid = fee
	} else {
		result.FeeCharged = fee
	}
	return nil
}
