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

const DefaultStoreTimeout = 5 * time.Second

// storeRunner выполняет обращения к хранилищу с таймаутом и приводит временные сбои к
// domain.ErrStoreUnavailable.
type storeRunner struct {
	uow     uow.UOW
	timeout time.Duration
}

func newStoreRunner(u uow.UOW, timeout time.Duration) storeRunner {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return storeRunner{uow: u, timeout: timeout}
}

// do выполняет fn в отдельной транзакции unit of work.
func (r storeRunner) do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	c, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return classifyStoreErr(r.uow.Do(c, fn))
}

// withTimeout используется для одиночных запросов вне транзакции.
func (r storeRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// classifyStoreErr помечает временные сбои (таймауты, обрывы соединения, дедлоки) как
// domain.ErrStoreUnavailable. Остальные ошибки возвращаются как есть.
func classifyStoreErr(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	if uow.IsTransient(err) {
		return fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, err.Error())
	}
	return err
}

func repoFromTx[T any](tx uow.TX, name repoargs.RepositoryName) (T, error) {
	repo, err := uow.GetAs[T](tx, uow.RepositoryName(name))
	if err != nil {
		return repo, fmt.Errorf("getting %s repository: %w", name, err)
	}
	return repo, nil
}
