package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxAttempts   uint = 30
	defaultRetryInterval      = 3 * time.Second
)

type ConnectArgs struct {
	DSN           string
	MigrationsDir string
	// StatementTimeout серверный таймаут одного запроса. 0 - не задавать.
	StatementTimeout time.Duration
	// MaxConns максимальный размер пула. 0 - значение pgxpool по умолчанию.
	MaxConns int32
}

// Connect открывает пул соединений, повторяя попытки пока база недоступна, и применяет миграции.
func Connect(ctx context.Context, args ConnectArgs, l *logrus.Logger) (*pgxpool.Pool, error) {
	var attempts uint
	for {
		pool, connErr := newPostgresConnection(ctx, args)
		if connErr == nil {
			if err := postgresMigrate(args.MigrationsDir, args.DSN); err != nil {
				pool.Close()
				return nil, err
			}
			return pool, nil
		}

		attempts++
		if attempts >= defaultMaxAttempts {
			return nil, pkgerrors.Wrapf(connErr, "init postgres connection after %d attempts", attempts)
		}
		l.WithError(connErr).
			WithField("CurrentAttempt", fmt.Sprintf("#%d / %d", attempts, defaultMaxAttempts)).
			Warnf("init postgres connection error, retrying in %.f seconds", defaultRetryInterval.Seconds())

		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(ctx.Err(), "init postgres connection")
		case <-time.After(defaultRetryInterval):
		}
	}
}

func newPostgresConnection(ctx context.Context, args ConnectArgs) (*pgxpool.Pool, error) {
	poolConfig, confErr := pgxpool.ParseConfig(args.DSN)
	if confErr != nil {
		return nil, pkgerrors.Wrap(confErr, "parse postgres config")
	}
	if args.MaxConns > 0 {
		poolConfig.MaxConns = args.MaxConns
	}
	if args.StatementTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] =
			strconv.FormatInt(args.StatementTimeout.Milliseconds(), 10)
	}

	pool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		return nil, pkgerrors.Wrap(poolErr, "failed to create pool")
	}

	// Проверяем, что соединение работает (Ping)
	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pkgerrors.Wrap(pingErr, "failed to connect to postgres")
	}

	return pool, nil
}

func postgresMigrate(dir string, dsn string) error {
	m, mErr := migrate.New("file://"+dir, dsn)
	if mErr != nil {
		return fmt.Errorf("failed to create migrate instance: %w", mErr)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
