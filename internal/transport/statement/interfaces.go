package statement

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/kopilka/internal/service"
)

type Servicer interface {
	DueStatements(ctx context.Context, limit uint) ([]int64, error)
	// CloseDueStatement закрывает месяц, завершившийся к дате выписки владельца счета.
	CloseDueStatement(ctx context.Context, accountID int64) (*service.StatementResult, error)
}
