package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx,
		`select id, created_at, statement_dt from users where id = $1`, id,
	).Scan(&user.ID, &user.CreatedAt, &user.StatementDate)
	if err != nil {
		return nil, convertErr(err, "finding user %d", id)
	}
	return &user, nil
}

// GetDueMainAccounts возвращает id основных счетов пользователей, у которых дата выписки наступила
// на момент asOf. Сначала идут самые просроченные.
func (r *UserRepository) GetDueMainAccounts(ctx context.Context, asOf time.Time, limit uint) ([]int64, error) {
	safeLimit, safeLimitErr := safeConvertUintToInt32(limit)
	if safeLimitErr != nil {
		return nil, convertErr(safeLimitErr, "converting limit to int32")
	}
	rows, err := r.db.Query(ctx,
		`select a.id
		from users u
		inner join accounts a on a.user_id = u.id
		where u.statement_dt <= $1
		  and a.type_code = 'main' and `+usable(2)+`
		order by u.statement_dt, a.id
		limit $3`, asOf, asOf, safeLimit)
	if err != nil {
		return nil, convertErr(err, "getting accounts due for statement")
	}
	ids, collectErr := pgx.CollectRows(rows, pgx.RowTo[int64])
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting accounts due for statement")
	}
	return ids, nil
}

// AdvanceStatementDate переносит дату следующей выписки пользователя на to. Назад дата не сдвигается.
func (r *UserRepository) AdvanceStatementDate(ctx context.Context, userID int64, to time.Time) error {
	tag, err := r.db.Exec(ctx,
		`update users set statement_dt = greatest(statement_dt, $2::date) where id = $1`, userID, to)
	if err != nil {
		return convertErr(err, "advancing statement date of user %d", userID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "advancing statement date of user %d", userID)
	}
	return nil
}
