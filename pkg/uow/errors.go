package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrRepositoryNotRegistered     = errors.New("[uow] repository not registered")
	ErrRepositoryAlreadyRegistered = errors.New("[uow] repository already registered")
	ErrInvalidRepositoryType       = errors.New("[uow] invalid repository type")
)

// Коды postgres, после которых операцию можно безопасно повторить целиком.
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
	queryCanceledCode        = "57014"
	lockNotAvailableCode     = "55P03"
	connectionExceptionClass = "08"
	operatorInterventionCls  = "57P"
)

// IsTransient сообщает, является ли ошибка временной: таймаут, отмена запроса, обрыв соединения,
// дедлок или конфликт сериализации.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == serializationFailureCode,
			pgErr.Code == deadlockDetectedCode,
			pgErr.Code == queryCanceledCode,
			pgErr.Code == lockNotAvailableCode:
			return true
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == connectionExceptionClass:
			return true
		case len(pgErr.Code) >= 3 && pgErr.Code[:3] == operatorInterventionCls:
			return true
		}
	}
	return false
}
