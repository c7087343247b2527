package service

import (
	"github.com/fsdevblog/kopilka/internal/domain"
)

func (s *LedgerTestSuite) TestAccountStatus() {
	cases := []struct {
		name      string
		accountID int64
		want      bool
	}{
		{name: "active", accountID: mainAccountID, want: true},
		{name: "closed", accountID: closedAccountID, want: false},
		{name: "unknown", accountID: 999, want: false},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			usable, err := s.services.AccountService.AccountStatus(s.T().Context(), c.accountID)
			s.Require().NoError(err)
			s.Equal(c.want, usable)
		})
	}
}

func (s *LedgerTestSuite) TestAccountTransactions() {
	first, err := s.services.TransactionService.Submit(s.T().Context(),
		purchase(mainAccountID, merchantAccountID, "100"))
	s.Require().NoError(err)
	second, err := s.services.TransactionService.Submit(s.T().Context(), PostArgs{
		From:   domain.ExternalParty(1),
		To:     domain.AccountParty(mainAccountID),
		Kind:   domain.TransactionKindTransfer,
		Amount: dec("50"),
	})
	s.Require().NoError(err)

	transactions, err := s.services.AccountService.AccountTransactions(s.T().Context(), mainAccountID)
	s.Require().NoError(err)
	s.Require().Len(transactions, 2)
	s.Equal(second.Transaction.ID, transactions[0].ID, "newest first")
	s.True(transactions[0].Incoming)
	s.Equal(first.Transaction.ID, transactions[1].ID)
	s.False(transactions[1].Incoming)

	_, err = s.services.AccountService.AccountTransactions(s.T().Context(), closedAccountID)
	s.ErrorIs(err, domain.ErrAccountUnusable)

	_, err = s.services.AccountService.AccountTransactions(s.T().Context(), 999)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *LedgerTestSuite) TestUserAccounts() {
	accounts, err := s.services.AccountService.UserAccounts(s.T().Context(), userID)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2, "closed account is hidden")
	s.Equal(mainAccountID, accounts[0].ID)
	s.Equal(protectedAccountID, accounts[1].ID)
}

func (s *LedgerTestSuite) TestUserSpending() {
	_, err := s.services.TransactionService.Submit(s.T().Context(),
		purchase(mainAccountID, merchantAccountID, "100.25"))
	s.Require().NoError(err)
	_, err = s.services.TransactionService.Submit(s.T().Context(),
		purchase(mainAccountID, fundAccountID, "10"))
	s.Require().NoError(err)

	spent, err := s.services.AccountService.UserSpending(s.T().Context(), userID)
	s.Require().NoError(err)
	s.True(spent.Equal(dec("110.25")), "got %s", spent)

	s.clock = s.clock.AddDate(0, 1, 0)
	spent, err = s.services.AccountService.UserSpending(s.T().Context(), userID)
	s.Require().NoError(err)
	s.True(spent.IsZero())
}
