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

const transactionColumns = `t.id, t.from_type, t.from_id, t.to_type, t.to_id, t.transaction_type,
	t.amount, t.transaction_dttm, t.comment`

// TransactionRepository работает с журналом транзакций. Журнал только дописывается: методов
// изменения и удаления записей нет.
type TransactionRepository struct {
	db uow.DBTX
}

func NewTransactionRepository(db uow.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create дописывает транзакцию в журнал. id и время присваиваются базой.
func (r *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx,
		`insert into transactions (from_type, from_id, to_type, to_id, transaction_type, amount, comment)
		values ($1, $2, $3, $4, $5, $6::numeric, $7)
		returning `+transactionColumns,
		string(args.From.Type), args.From.ID,
		string(args.To.Type), args.To.ID,
		string(args.Kind), args.Amount, args.Comment,
	)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating %s transaction", args.Kind)
	}
	return t, nil
}

// GetByAccountID возвращает все транзакции, затрагивающие счет, от новых к старым.
func (r *TransactionRepository) GetByAccountID(
	ctx context.Context,
	accountID int64,
) ([]domain.AccountTransaction, error) {
	rows, err := r.db.Query(ctx,
		`select `+transactionColumns+` from transactions t
		where (t.from_type = 'account' and t.from_id = $1)
		   or (t.to_type = 'account' and t.to_id = $1)
		order by t.transaction_dttm desc, t.id desc`, accountID)
	if err != nil {
		return nil, convertErr(err, "getting transactions of account %d", accountID)
	}
	transactions, collectErr := pgx.CollectRows(rows,
		func(row pgx.CollectableRow) (domain.AccountTransaction, error) {
			t, scanErr := scanTransaction(row)
			if scanErr != nil {
				return domain.AccountTransaction{}, scanErr
			}
			return domain.AccountTransaction{
				Transaction: *t,
				Incoming:    t.To.IsAccount() && t.To.ID == accountID,
			}, nil
		})
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting transactions of account %d", accountID)
	}
	return transactions, nil
}

// SumOutgoingByUser возвращает сумму исходящих со счетов пользователя транзакций за месяц month.
func (r *TransactionRepository) SumOutgoingByUser(
	ctx context.Context,
	userID int64,
	month time.Time,
) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx,
		`select coalesce(sum(t.amount), 0)
		from transactions t
		inner join accounts a on t.from_type = 'account' and t.from_id = a.id
		where a.user_id = $1
		  and t.transaction_dttm >= $2
		  and t.transaction_dttm < $3`,
		userID, month, month.AddDate(0, 1, 0)).Scan(&sum)
	if err != nil {
		return decimal.Zero, convertErr(err, "summing spending of user %d", userID)
	}
	return sum, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                      domain.Transaction
		fromType, toType, kind string
		comment                *string
	)
	if err := row.Scan(
		&t.ID,
		&fromType,
		&t.From.ID,
		&toType,
		&t.To.ID,
		&kind,
		&t.Amount,
		&t.CreatedAt,
		&comment,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	t.From.Type = domain.PartyType(fromType)
	t.To.Type = domain.PartyType(toType)
	t.Kind = domain.TransactionKind(kind)
	if comment != nil {
		t.Comment = *comment
	}
	return &t, nil
}
