package service

import (
	"errors"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
)

func (s *LedgerTestSuite) transactionsOfKind(kind domain.TransactionKind) []domain.Transaction {
	var res []domain.Transaction
	for _, t := range s.store.state.transactions {
		if t.Kind == kind {
			res = append(res, t)
		}
	}
	return res
}

func (s *LedgerTestSuite) TestCloseStatement_SweepsToFund() {
	s.addLimit(mainAccountID, merchantID, dec("1000.00"), dec("2500.00"))
	s.setBalance(protectedAccountID, dec("2500.00"))

	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.Equal(1, res.Processed)
	s.Equal(0, res.Failed)
	s.True(res.SweptToFund.Equal(dec("1500.00")))
	s.True(res.ChargedBack.IsZero())
	s.True(res.FeeCharged.Equal(dec("20")))

	transfers := s.transactionsOfKind(domain.TransactionKindTransfer)
	s.Require().Len(transfers, 1)
	s.Equal(domain.AccountParty(protectedAccountID), transfers[0].From)
	s.Equal(domain.AccountParty(fundAccountID), transfers[0].To)
	s.Empty(s.transactionsOfKind(domain.TransactionKindChargeback))

	s.True(s.balance(protectedAccountID).Equal(dec("1000.00")))
	s.True(s.balance(fundAccountID).Equal(dec("1500.00")))
	s.True(s.limit(mainAccountID, merchantID).Spent.IsZero())
}

func (s *LedgerTestSuite) TestCloseStatement_Chargeback() {
	s.addLimit(mainAccountID, merchantID, dec("1000.00"), dec("1500.00"))
	s.setBalance(protectedAccountID, dec("1500.00"))

	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.True(res.ChargedBack.Equal(dec("500.00")))
	s.True(res.SweptToFund.IsZero())

	chargebacks := s.transactionsOfKind(domain.TransactionKindChargeback)
	s.Require().Len(chargebacks, 1)
	s.Equal(domain.AccountParty(protectedAccountID), chargebacks[0].From)
	s.Equal(domain.AccountParty(mainAccountID), chargebacks[0].To)
	s.True(chargebacks[0].Amount.Equal(dec("500.00")))

	// 5000 + 500 возврата - 20 комиссии.
	s.True(s.balance(mainAccountID).Equal(dec("5480.00")))
	s.True(s.limit(mainAccountID, merchantID).Spent.IsZero())
}

func (s *LedgerTestSuite) TestCloseStatement_FeeAndStatementDate() {
	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.Equal(1, res.Processed, "non breached row is only reset")
	s.True(res.FeeCharged.Equal(dec("20")))

	fees := s.transactionsOfKind(domain.TransactionKindFee)
	s.Require().Len(fees, 1)
	s.Equal(domain.AccountParty(mainAccountID), fees[0].From)
	s.Equal(domain.ExternalParty(collectionsParty), fees[0].To)
	s.True(s.balance(mainAccountID).Equal(dec("4980")))

	// октябрь закрыт, следующая выписка закрывает ноябрь.
	s.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), s.store.state.users[userID].StatementDate)
}

func (s *LedgerTestSuite) TestCloseStatement_FeeUnpaidStillCloses() {
	s.setBalance(mainAccountID, dec("5"))

	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.True(res.FeeCharged.IsZero())
	s.True(res.FeeUnpaid.Equal(dec("20")))
	s.Empty(s.transactionsOfKind(domain.TransactionKindFee))
	s.True(s.balance(mainAccountID).Equal(dec("5")))

	november := domain.MonthStart(s.clock).AddDate(0, 1, 0)
	_, ok := s.limitAt(mainAccountID, merchantID, november)
	s.True(ok, "next month limits are created")
	s.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), s.store.state.users[userID].StatementDate)

	s.clock = time.Date(2026, 11, 1, 0, 1, 0, 0, time.UTC)
	ids, err := s.services.StatementService.DueStatements(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *LedgerTestSuite) TestCloseDueStatement_ClosesEndedMonth() {
	october := domain.MonthStart(s.clock)
	november := october.AddDate(0, 1, 0)
	s.addLimit(mainAccountID, merchantID, dec("1000.00"), dec("2500.00"))
	s.setBalance(protectedAccountID, dec("2500.00"))
	s.addUser(userID, november)
	s.clock = time.Date(2026, 11, 1, 0, 1, 0, 0, time.UTC)

	ids, err := s.services.StatementService.DueStatements(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Equal([]int64{mainAccountID}, ids)

	res, err := s.services.StatementService.CloseDueStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.True(res.Period.Equal(october))
	s.Equal(1, res.Processed)
	s.True(res.SweptToFund.Equal(dec("1500.00")))
	s.True(res.FeeCharged.Equal(dec("20")))

	s.True(s.balance(protectedAccountID).Equal(dec("1000.00")))
	s.True(s.balance(fundAccountID).Equal(dec("1500.00")))

	octoberLimit, ok := s.limitAt(mainAccountID, merchantID, october)
	s.Require().True(ok)
	s.True(octoberLimit.Spent.IsZero())
	novemberLimit, ok := s.limitAt(mainAccountID, merchantID, november)
	s.Require().True(ok, "limits are rolled over into the new month")
	s.True(novemberLimit.Cap.Equal(dec("1000.00")))
	s.True(novemberLimit.Spent.IsZero())

	s.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), s.store.state.users[userID].StatementDate)
	ids, err = s.services.StatementService.DueStatements(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Empty(ids)
}

// TestCloseDueStatement_CatchesUpOverdueMonth дата выписки 1 октября, а на дворе 18 октября:
// закрывается сентябрь, текущий месяц не трогается.
func (s *LedgerTestSuite) TestCloseDueStatement_CatchesUpOverdueMonth() {
	s.addLimit(mainAccountID, merchantID, dec("1200"), dec("1500"))
	s.setBalance(protectedAccountID, dec("1500"))

	res, err := s.services.StatementService.CloseDueStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.True(res.Period.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	s.Equal(0, res.Processed)
	s.True(res.ChargedBack.IsZero())
	s.True(res.FeeCharged.Equal(dec("20")))

	s.True(s.limit(mainAccountID, merchantID).Spent.Equal(dec("1500")))
	s.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), s.store.state.users[userID].StatementDate)
}

func (s *LedgerTestSuite) TestCloseDueStatement_NotDue() {
	s.addUser(userID, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))

	_, err := s.services.StatementService.CloseDueStatement(s.T().Context(), mainAccountID)
	s.ErrorIs(err, domain.ErrInvalidArgument)
	s.Empty(s.store.state.transactions)
}

func (s *LedgerTestSuite) TestCloseStatement_PartialFailure() {
	secondMerchant := int64(8)
	s.addAccount(11, nil, domain.AccountKindMerchant, dec("0"))
	s.setMerchant(11, &secondMerchant)

	// первая строка возвращает 500, на вторую (3000 в фонд) средств уже не хватит.
	s.addLimit(mainAccountID, merchantID, dec("1000"), dec("1500"))
	s.addLimit(mainAccountID, secondMerchant, dec("1000"), dec("4000"))
	s.setBalance(protectedAccountID, dec("600"))

	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrPartialSweep)
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	var rowErr *domain.LimitSweepError
	s.Require().True(errors.As(err, &rowErr))
	s.Equal(secondMerchant, rowErr.MerchantID)

	s.Require().NotNil(res)
	s.Equal(1, res.Processed)
	s.Equal(1, res.Failed)
	s.True(res.ChargedBack.Equal(dec("500")))
	s.True(res.SweptToFund.IsZero())
	s.True(res.FeeCharged.Equal(dec("20")), "fee is charged despite failed rows")

	s.True(s.limit(mainAccountID, merchantID).Spent.IsZero())
	s.True(s.limit(mainAccountID, secondMerchant).Spent.Equal(dec("4000")), "failed row is not reset")
	s.True(s.balance(protectedAccountID).Equal(dec("100")))
}

func (s *LedgerTestSuite) TestCloseStatement_NoProtectionAccount() {
	a := s.store.state.accounts[protectedAccountID]
	a.Status = domain.AccountStatusClosed
	s.store.state.accounts[protectedAccountID] = a
	s.addLimit(mainAccountID, merchantID, dec("1000"), dec("1500"))

	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.ErrorIs(err, domain.ErrPartialSweep)
	s.ErrorIs(err, domain.ErrNoProtectionAccount)
	s.Require().NotNil(res)
	s.Equal(0, res.Processed)
	s.Equal(1, res.Failed)
}

func (s *LedgerTestSuite) TestCloseStatement_RejectsNonMainAccount() {
	_, err := s.services.StatementService.CloseStatement(s.T().Context(), protectedAccountID)
	s.ErrorIs(err, domain.ErrInvalidArgument)

	_, err = s.services.StatementService.CloseStatement(s.T().Context(), 999)
	s.ErrorIs(err, domain.ErrRecordNotFound)
	s.Empty(s.store.state.transactions)
}

func (s *LedgerTestSuite) TestCloseStatement_FinishFailureKeepsSweeps() {
	s.addLimit(mainAccountID, merchantID, dec("1000"), dec("1500"))
	s.setBalance(protectedAccountID, dec("500"))
	s.setBalance(mainAccountID, dec("0"))
	s.store.failOnce("AdvanceStatementDate", errors.New("boom"))

	res, err := s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().Error(err)
	s.NotErrorIs(err, domain.ErrPartialSweep)
	s.Require().NotNil(res)
	s.True(res.ChargedBack.Equal(dec("500")))
	s.True(res.FeeCharged.IsZero())

	// возврат зафиксирован, комиссия и перенос даты откатились вместе.
	s.Len(s.transactionsOfKind(domain.TransactionKindChargeback), 1)
	s.Empty(s.transactionsOfKind(domain.TransactionKindFee))
	s.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), s.store.state.users[userID].StatementDate)
}

func (s *LedgerTestSuite) TestCurrentLimits_FreshRowInNewMonth() {
	_, err := s.services.TransactionService.Submit(s.T().Context(),
		purchase(mainAccountID, merchantAccountID, "700"))
	s.Require().NoError(err)

	limits, err := s.services.LimitService.CurrentLimits(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.Require().Len(limits, 1)
	s.True(limits[0].Spent.Equal(dec("700")))
	s.Require().NotNil(limits[0].MerchantAccountID)
	s.Equal(merchantAccountID, *limits[0].MerchantAccountID)

	_, err = s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.True(s.limit(mainAccountID, merchantID).Spent.IsZero())

	s.clock = time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)
	limits, err = s.services.LimitService.CurrentLimits(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.Require().Len(limits, 1)
	s.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), limits[0].Month)
	s.True(limits[0].Cap.Equal(dec("1200")))
	s.True(limits[0].Spent.IsZero())
}

func (s *LedgerTestSuite) TestLimitService_AccumulateWithoutRow() {
	_, err := s.services.LimitService.Accumulate(s.T().Context(), mainAccountID, 999, dec("10"))
	s.ErrorIs(err, domain.ErrNoSuchLimit)

	err = s.services.LimitService.Reset(s.T().Context(), mainAccountID, 999)
	s.ErrorIs(err, domain.ErrNoSuchLimit)

	_, err = s.services.LimitService.Accumulate(s.T().Context(), mainAccountID, merchantID, dec("0"))
	s.ErrorIs(err, domain.ErrInvalidArgument)
}

func (s *LedgerTestSuite) TestLimitService_RollOverIsIdempotent() {
	month := domain.MonthStart(s.clock)
	created, err := s.services.LimitService.RollOver(s.T().Context(), mainAccountID, month, month.AddDate(0, 1, 0))
	s.Require().NoError(err)
	s.Equal(int64(1), created)

	created, err = s.services.LimitService.RollOver(s.T().Context(), mainAccountID, month, month.AddDate(0, 1, 0))
	s.Require().NoError(err)
	s.Equal(int64(0), created)
}

func (s *LedgerTestSuite) TestDueStatements() {
	var lateUser int64 = 5
	s.addUser(lateUser, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC))
	s.addAccount(50, &lateUser, domain.AccountKindMain, dec("0"))

	ids, err := s.services.StatementService.DueStatements(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Equal([]int64{mainAccountID}, ids)

	_, err = s.services.StatementService.CloseStatement(s.T().Context(), mainAccountID)
	s.Require().NoError(err)

	ids, err = s.services.StatementService.DueStatements(s.T().Context(), 10)
	s.Require().NoError(err)
	s.Empty(ids)
}
