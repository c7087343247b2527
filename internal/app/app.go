package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/kopilka/internal/config"
	"github.com/fsdevblog/kopilka/internal/repository/pgrepo"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/internal/service"
	"github.com/fsdevblog/kopilka/internal/transport/api"
	"github.com/fsdevblog/kopilka/internal/transport/statement"
	"github.com/fsdevblog/kopilka/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Run поднимает пул соединений, применяет миграции, запускает http сервер и процессор выписок.
// Возвращает context.Canceled при остановке по сигналу.
func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %s", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, pgrepo.ConnectArgs{
		DSN:              a.Config.DatabaseDSN,
		MigrationsDir:    a.Config.MigrationsDir,
		StatementTimeout: a.Config.StoreTimeout,
	}, a.Logger)
	if connErr != nil {
		return pkgerrors.Wrap(connErr, "app run")
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return pkgerrors.Wrap(uowErr, "app run")
	}

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		StoreTimeout: a.Config.StoreTimeout,
		Statement: service.StatementArgs{
			FundAccountID:      a.Config.FundAccountID,
			FundName:           a.Config.FundName,
			CollectionsPartyID: a.Config.CollectionsPartyID,
			MaintenanceFee:     a.Config.MaintenanceFee,
		},
	})
	if sErr != nil {
		return pkgerrors.Wrap(sErr, "app run")
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:             a.Logger,
		TransactionService: services.TransactionService,
		AccountService:     services.AccountService,
		LimitService:       services.LimitService,
		StatementService:   services.StatementService,
		APIKey:             a.Config.APIKey,
	})
	if routerErr != nil {
		return pkgerrors.Wrap(routerErr, "app run")
	}

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if runErr := server.ListenAndServe(); runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			errChan <- runErr
		}
	}()

	processor := statement.New(services.StatementService, a.Config.StatementInterval, a.Logger).
		SetWorkers(a.Config.StatementWorkers)
	go processor.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.Logger.WithError(err).Error("http server shutdown")
		}
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return pkgerrors.Wrap(err, "http server")
	}
}

// initUOW регистрирует репозитории в unit of work.
func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := []struct {
		name    repoargs.RepositoryName
		factory uow.RepositoryFactory
	}{
		{
			name: repoargs.AccountRepoName,
			factory: func(dbtx uow.DBTX) uow.Repository {
				return pgrepo.NewAccountRepository(dbtx)
			},
		},
		{
			name: repoargs.TransactionRepoName,
			factory: func(dbtx uow.DBTX) uow.Repository {
				return pgrepo.NewTransactionRepository(dbtx)
			},
		},
		{
			name: repoargs.LimitRepoName,
			factory: func(dbtx uow.DBTX) uow.Repository {
				return pgrepo.NewLimitRepository(dbtx)
			},
		},
		{
			name: repoargs.UserRepoName,
			factory: func(dbtx uow.DBTX) uow.Repository {
				return pgrepo.NewUserRepository(dbtx)
			},
		},
	}

	for _, f := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(f.name), f.factory); regErr != nil {
			return nil, pkgerrors.Wrapf(regErr, "init UOW: register %s", f.name)
		}
	}
	return unitOfWork, nil
}
