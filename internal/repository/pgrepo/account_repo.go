package pgrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `a.id, a.user_id, a.merchant_id, a.type_code, a.status_code, a.caption,
	a.balance_amt, a.open_dttm, a.close_dttm`

// usableCondition условие пригодности счета: активен и $N попадает в окно действия.
const usableCondition = `a.status_code = 'ACT' and a.open_dttm <= $%d
	and (a.close_dttm is null or a.close_dttm > $%d)`

type AccountRepository struct {
	db uow.DBTX
}

func NewAccountRepository(db uow.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByID ищет счет по id. Возвращает domain.ErrRecordNotFound, если счета нет.
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `select `+accountColumns+` from accounts a where a.id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "finding account by id %d", id)
	}
	return account, nil
}

// LockByIDs блокирует строки счетов (select for update) в порядке возрастания id, чтобы параллельные
// транзакции, затрагивающие одни и те же счета, не могли взаимно заблокироваться.
// Возвращает найденные счета, отсутствующие id просто не попадают в результат.
func (r *AccountRepository) LockByIDs(ctx context.Context, ids []int64) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`select `+accountColumns+` from accounts a where a.id = any($1) order by a.id for update`, ids)
	if err != nil {
		return nil, convertErr(err, "locking accounts %v", ids)
	}
	accounts, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Account, error) {
		account, scanErr := scanAccount(row)
		if scanErr != nil {
			return domain.Account{}, scanErr
		}
		return *account, nil
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "locking accounts %v", ids)
	}
	return accounts, nil
}

// AdjustBalance изменяет баланс счета на delta и возвращает новый баланс.
func (r *AccountRepository) AdjustBalance(
	ctx context.Context,
	id int64,
	delta decimal.Decimal,
) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`update accounts set balance_amt = balance_amt + $2::numeric, updated_at = now()
		where id = $1 returning balance_amt`, id, delta).Scan(&balance)
	if err != nil {
		return decimal.Zero, convertErr(err, "adjusting balance of account %d by %s", id, delta)
	}
	return balance, nil
}

// FindUsableByUserAndKind ищет пригодный на момент now счет пользователя заданного типа.
// Если таких несколько, возвращается самый ранний.
func (r *AccountRepository) FindUsableByUserAndKind(
	ctx context.Context,
	userID int64,
	kind domain.AccountKind,
	now time.Time,
) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`select `+accountColumns+` from accounts a
		where a.user_id = $1 and a.type_code = $2 and `+usable(3)+`
		order by a.id limit 1`, userID, string(kind), now)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "finding %s account of user %d", kind, userID)
	}
	return account, nil
}

// GetUsableByUserID возвращает пригодные на момент now счета пользователя, отсортированные по id.
func (r *AccountRepository) GetUsableByUserID(
	ctx context.Context,
	userID int64,
	now time.Time,
) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`select `+accountColumns+` from accounts a where a.user_id = $1 and `+usable(2)+` order by a.id`,
		userID, now)
	if err != nil {
		return nil, convertErr(err, "getting accounts of user %d", userID)
	}
	accounts, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Account, error) {
		account, scanErr := scanAccount(row)
		if scanErr != nil {
			return domain.Account{}, scanErr
		}
		return *account, nil
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting accounts of user %d", userID)
	}
	return accounts, nil
}

func usable(argN int) string {
	return fmt.Sprintf(usableCondition, argN, argN)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account      domain.Account
		kind, status string
		caption      *string
	)
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.MerchantID,
		&kind,
		&status,
		&caption,
		&account.Balance,
		&account.OpenedAt,
		&account.ClosedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	account.Kind = domain.AccountKind(kind)
	account.Status = domain.AccountStatus(status)
	if caption != nil {
		account.Caption = *caption
	}
	return &account, nil
}
