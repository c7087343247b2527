package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/kopilka/pkg/uow"
)

type AppServices struct {
	TransactionService *TransactionService
	LimitService       *LimitService
	StatementService   *StatementService
	AccountService     *AccountService
}

type FactoryArgs struct {
	StoreTimeout time.Duration
	Statement    StatementArgs
	// Now источник текущего времени. По умолчанию time.Now.
	Now func() time.Time
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	limitService, limitServiceErr := NewLimitService(unitOfWork, args.StoreTimeout, args.Now)
	if limitServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", limitServiceErr.Error())
	}

	transactionService := NewTransactionService(unitOfWork, limitService, args.StoreTimeout, args.Now)

	statementService, statementServiceErr :=
		NewStatementService(unitOfWork, limitService, args.Statement, args.StoreTimeout, args.Now)
	if statementServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", statementServiceErr.Error())
	}

	accountService, accountServiceErr := NewAccountService(unitOfWork, args.StoreTimeout, args.Now)
	if accountServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", accountServiceErr.Error())
	}

	return &AppServices{
		TransactionService: transactionService,
		LimitService:       limitService,
		StatementService:   statementService,
		AccountService:     accountService,
	}, nil
}
