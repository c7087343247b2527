package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/pkg/uow"
	"github.com/shopspring/decimal"
)

// PostArgs предлагаемое движение денег.
type PostArgs struct {
	From    domain.Party
	To      domain.Party
	Kind    domain.TransactionKind
	Amount  decimal.Decimal
	Comment string
}

func (a *PostArgs) validate() error {
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidArgument, a.Amount)
	}
	if !a.From.Type.IsValid() {
		return fmt.Errorf("%w: unknown source party type %q", domain.ErrInvalidArgument, a.From.Type)
	}
	if !a.To.Type.IsValid() {
		return fmt.Errorf("%w: unknown destination party type %q", domain.ErrInvalidArgument, a.To.Type)
	}
	if !a.Kind.IsValid() {
		return fmt.Errorf("%w: unknown transaction kind %q", domain.ErrInvalidArgument, a.Kind)
	}
	return nil
}

// posting результат проводки: записанная транзакция и счет-источник в состоянии до списания
// (nil для внешнего источника).
type posting struct {
	transaction *domain.Transaction
	source      *domain.Account
}

// post проводит транзакцию внутри переданной транзакции unit of work.
//
// Алгоритм работы:
//  1. Блокирует все затронутые счета одним select for update в порядке возрастания id.
//  2. Проверяет пригодность счета-источника и достаточность средств на нем.
//  3. Записывает транзакцию в журнал и применяет изменения балансов.
//
// Внешний источник считается бесконечным. Счета-получатели должны существовать.
func post(ctx context.Context, tx uow.TX, args PostArgs, now time.Time) (*posting, error) {
	accountRepo, accRepoErr := repoFromTx[AccountRepository](tx, repoargs.AccountRepoName)
	if accRepoErr != nil {
		return nil, accRepoErr
	}
	transactionRepo, trRepoErr := repoFromTx[TransactionRepository](tx, repoargs.TransactionRepoName)
	if trRepoErr != nil {
		return nil, trRepoErr
	}

	locked, lockErr := accountRepo.LockByIDs(ctx, touchedAccountIDs(args.From, args.To))
	if lockErr != nil {
		return nil, lockErr //nolint:wrapcheck
	}
	accounts := make(map[int64]domain.Account, len(locked))
	for _, a := range locked {
		accounts[a.ID] = a
	}

	var source *domain.Account
	if args.From.IsAccount() {
		a, ok := accounts[args.From.ID]
		if !ok {
			return nil, fmt.Errorf("source account %d: %w", args.From.ID, domain.ErrRecordNotFound)
		}
		if !a.IsUsable(now) {
			return nil, fmt.Errorf("source account %d: %w", a.ID, domain.ErrAccountUnusable)
		}
		if a.Balance.LessThan(args.Amount) {
			return nil, fmt.Errorf("source account %d has %s, requested %s: %w",
				a.ID, a.Balance, args.Amount, domain.ErrInsufficientFunds)
		}
		source = &a
	}
	if args.To.IsAccount() {
		if _, ok := accounts[args.To.ID]; !ok {
			return nil, fmt.Errorf("destination account %d: %w", args.To.ID, domain.ErrRecordNotFound)
		}
	}

	transaction, createErr := transactionRepo.Create(ctx, repoargs.TransactionCreate{
		From:    args.From,
		To:      args.To,
		Kind:    args.Kind,
		Amount:  args.Amount,
		Comment: args.Comment,
	})
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	for _, id := range touchedAccountIDs(args.From, args.To) {
		delta := transaction.Delta(id)
		if delta.IsZero() {
			// перевод самому себе баланс не меняет.
			continue
		}
		if _, err := accountRepo.AdjustBalance(ctx, id, delta); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return &posting{transaction: transaction, source: source}, nil
}

// touchedAccountIDs возвращает уникальные id счетов среди участников в порядке возрастания.
func touchedAccountIDs(parties ...domain.Party) []int64 {
	ids := make([]int64, 0, len(parties))
	for _, p := range parties {
		if p.IsAccount() {
			ids = append(ids, p.ID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
