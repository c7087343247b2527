package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/internal/service/mocks"
	"github.com/fsdevblog/kopilka/pkg/uow"
	uowmocks "github.com/fsdevblog/kopilka/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// decimalMatcher сравнивает decimal по значению, а не по внутреннему представлению.
type decimalMatcher struct {
	want decimal.Decimal
}

func decimalEq(want decimal.Decimal) gomock.Matcher {
	return decimalMatcher{want: want}
}

func (m decimalMatcher) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is equal to " + m.want.String()
}

type TransactionServiceTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	mockUOW             *uowmocks.MockUOW
	mockTX              *uowmocks.MockTX
	mockAccountRepo     *mocks.MockAccountRepository
	mockTransactionRepo *mocks.MockTransactionRepository
	mockLimitRepo       *mocks.MockLimitRepository
	transactionService  *TransactionService
	now                 time.Time
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockAccountRepository(s.mockCtrl)
	s.mockTransactionRepo = mocks.NewMockTransactionRepository(s.mockCtrl)
	s.mockLimitRepo = mocks.NewMockLimitRepository(s.mockCtrl)
	s.now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.LimitRepoName)).
		Return(s.mockLimitRepo, nil).AnyTimes()

	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransactionRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.LimitRepoName)).
		Return(s.mockLimitRepo, nil).AnyTimes()

	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	now := func() time.Time { return s.now }
	limits, err := NewLimitService(s.mockUOW, time.Second, now)
	s.Require().NoError(err)
	s.transactionService = NewTransactionService(s.mockUOW, limits, time.Second, now)
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *TransactionServiceTestSuite) account(id int64, balance string) domain.Account {
	owner := int64(1)
	return domain.Account{
		ID:       id,
		UserID:   &owner,
		Kind:     domain.AccountKindMain,
		Status:   domain.AccountStatusActive,
		Balance:  decimal.RequireFromString(balance),
		OpenedAt: s.now.AddDate(-1, 0, 0),
	}
}

func (s *TransactionServiceTestSuite) TestSubmit_LocksAccountsInOrder() {
	amount := decimal.NewFromInt(40)
	transaction := &domain.Transaction{
		ID:     77,
		From:   domain.AccountParty(9),
		To:     domain.AccountParty(3),
		Kind:   domain.TransactionKindTransfer,
		Amount: amount,
	}

	gomock.InOrder(
		s.mockAccountRepo.EXPECT().LockByIDs(gomock.Any(), []int64{3, 9}).
			Return([]domain.Account{s.account(3, "0"), s.account(9, "100")}, nil),
		s.mockTransactionRepo.EXPECT().Create(gomock.Any(), repoargs.TransactionCreate{
			From:   transaction.From,
			To:     transaction.To,
			Kind:   transaction.Kind,
			Amount: amount,
		}).Return(transaction, nil),
		s.mockAccountRepo.EXPECT().AdjustBalance(gomock.Any(), int64(3), decimalEq(amount)).
			Return(amount, nil),
		s.mockAccountRepo.EXPECT().AdjustBalance(gomock.Any(), int64(9), decimalEq(amount.Neg())).
			Return(decimal.NewFromInt(60), nil),
		// лимитов у источника нет.
		s.mockLimitRepo.EXPECT().GetByAccountAndMonth(gomock.Any(), int64(9), domain.MonthStart(s.now)).
			Return(nil, nil),
	)

	res, err := s.transactionService.Submit(s.T().Context(), PostArgs{
		From:   transaction.From,
		To:     transaction.To,
		Kind:   transaction.Kind,
		Amount: amount,
	})
	s.Require().NoError(err)
	s.Equal(transaction, res.Transaction)
	s.False(res.LimitExisted)
}

func (s *TransactionServiceTestSuite) TestSubmit_InsufficientFundsWritesNothing() {
	s.mockAccountRepo.EXPECT().LockByIDs(gomock.Any(), []int64{1, 2}).
		Return([]domain.Account{s.account(1, "100.00"), s.account(2, "0")}, nil)
	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.mockAccountRepo.EXPECT().AdjustBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	res, err := s.transactionService.Submit(s.T().Context(), PostArgs{
		From:   domain.AccountParty(1),
		To:     domain.AccountParty(2),
		Kind:   domain.TransactionKindPurchase,
		Amount: decimal.RequireFromString("150.00"),
	})
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	s.Nil(res)
}

func (s *TransactionServiceTestSuite) TestSubmit_TransientErrors() {
	cases := []struct {
		name string
		err  error
	}{
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}},
		{name: "query canceled", err: &pgconn.PgError{Code: "57014"}},
		{name: "timeout", err: context.DeadlineExceeded},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			s.mockAccountRepo.EXPECT().LockByIDs(gomock.Any(), []int64{1}).Return(nil, c.err)

			_, err := s.transactionService.Submit(s.T().Context(), PostArgs{
				From:   domain.AccountParty(1),
				To:     domain.ExternalParty(4242),
				Kind:   domain.TransactionKindFee,
				Amount: decimal.NewFromInt(1),
			})
			s.ErrorIs(err, domain.ErrStoreUnavailable)
		})
	}
}

func (s *TransactionServiceTestSuite) TestSubmit_ExternalToExternalSkipsLimits() {
	s.mockAccountRepo.EXPECT().LockByIDs(gomock.Any(), []int64{}).Return(nil, nil)
	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Transaction{ID: 1}, nil)
	s.mockLimitRepo.EXPECT().GetByAccountAndMonth(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	res, err := s.transactionService.Submit(s.T().Context(), PostArgs{
		From:   domain.ExternalParty(1),
		To:     domain.ExternalParty(2),
		Kind:   domain.TransactionKindTransfer,
		Amount: decimal.NewFromInt(5),
	})
	s.Require().NoError(err)
	s.True(res.Recorded())
}
