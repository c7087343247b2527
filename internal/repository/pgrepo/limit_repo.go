package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type LimitRepository struct {
	db uow.DBTX
}

func NewLimitRepository(db uow.DBTX) *LimitRepository {
	return &LimitRepository{db: db}
}

// GetByAccountAndMonth возвращает лимиты счета за месяц month вместе со счетом мерчанта,
// отсортированные по id мерчанта. Если у мерчанта несколько счетов, берется самый ранний.
func (r *LimitRepository) GetByAccountAndMonth(
	ctx context.Context,
	accountID int64,
	month time.Time,
) ([]domain.SpendingLimit, error) {
	rows, err := r.db.Query(ctx,
		`select l.account_id, l.merchant_id, l.month_dt, l.limit_amt, l.spent_amt,
		       (select min(a.id) from accounts a
		        where a.merchant_id = l.merchant_id and a.type_code = 'merchant') as merchant_account_id
		from spending_limits l
		where l.account_id = $1 and l.month_dt = $2
		order by l.merchant_id`, accountID, month)
	if err != nil {
		return nil, convertErr(err, "getting limits of account %d", accountID)
	}
	limits, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SpendingLimit, error) {
		var l domain.SpendingLimit
		scanErr := row.Scan(&l.AccountID, &l.MerchantID, &l.Month, &l.Cap, &l.Spent, &l.MerchantAccountID)
		return l, scanErr
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting limits of account %d", accountID)
	}
	return limits, nil
}

// Accumulate прибавляет сумму к потраченному по лимиту и возвращает новое значение. Строка лимита
// блокируется до конца транзакции, так что параллельные начисления по одному ключу выполняются
// последовательно. Если строки нет, возвращает domain.ErrRecordNotFound.
func (r *LimitRepository) Accumulate(
	ctx context.Context,
	args repoargs.LimitAccumulate,
) (decimal.Decimal, error) {
	var spent decimal.Decimal
	err := r.db.QueryRow(ctx,
		`update spending_limits set spent_amt = spent_amt + $4::numeric
		where account_id = $1 and merchant_id = $2 and month_dt = $3
		returning spent_amt`,
		args.AccountID, args.MerchantID, args.Month, args.Amount).Scan(&spent)
	if err != nil {
		return decimal.Zero, convertErr(err, "accumulating limit of account %d for merchant %d",
			args.AccountID, args.MerchantID)
	}
	return spent, nil
}

// Reset обнуляет потраченное по лимиту. Если строки нет, возвращает domain.ErrRecordNotFound.
func (r *LimitRepository) Reset(ctx context.Context, key repoargs.LimitKey) error {
	tag, err := r.db.Exec(ctx,
		`update spending_limits set spent_amt = 0
		where account_id = $1 and merchant_id = $2 and month_dt = $3`,
		key.AccountID, key.MerchantID, key.Month)
	if err != nil {
		return convertErr(err, "resetting limit of account %d for merchant %d", key.AccountID, key.MerchantID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "resetting limit of account %d for merchant %d",
			key.AccountID, key.MerchantID)
	}
	return nil
}

// RollOver создает лимиты месяца to по образцу месяца from с нулевыми тратами. Существующие строки
// месяца to не трогает. Возвращает количество созданных строк.
func (r *LimitRepository) RollOver(ctx context.Context, accountID int64, from, to time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`insert into spending_limits (account_id, merchant_id, month_dt, limit_amt, spent_amt)
		select l.account_id, l.merchant_id, $3, l.limit_amt, 0
		from spending_limits l
		where l.account_id = $1 and l.month_dt = $2
		on conflict (account_id, merchant_id, month_dt) do nothing`,
		accountID, from, to)
	if err != nil {
		return 0, convertErr(err, "rolling over limits of account %d", accountID)
	}
	return tag.RowsAffected(), nil
}
