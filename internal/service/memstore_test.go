package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/repository/repoargs"
	"github.com/fsdevblog/kopilka/pkg/uow"
	"github.com/shopspring/decimal"
)

// memStore хранилище в памяти, реализующее uow.UOW. Транзакции выполняются строго по очереди,
// при ошибке состояние откатывается к снимку на момент начала транзакции.
type memStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
	// failures разовые ошибки, которые вернет операция с указанным именем.
	failures map[string]error
}

type limitKey struct {
	accountID  int64
	merchantID int64
	month      string
}

func newLimitKey(accountID, merchantID int64, month time.Time) limitKey {
	return limitKey{accountID: accountID, merchantID: merchantID, month: month.Format("2006-01")}
}

type memState struct {
	accounts     map[int64]domain.Account
	transactions []domain.Transaction
	limits       map[limitKey]domain.SpendingLimit
	users        map[int64]domain.User
	nextTxID     int64
}

func (s *memState) clone() *memState {
	c := &memState{
		accounts:     make(map[int64]domain.Account, len(s.accounts)),
		transactions: slices.Clone(s.transactions),
		limits:       make(map[limitKey]domain.SpendingLimit, len(s.limits)),
		users:        make(map[int64]domain.User, len(s.users)),
		nextTxID:     s.nextTxID,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.limits {
		c.limits[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		state: &memState{
			accounts: make(map[int64]domain.Account),
			limits:   make(map[limitKey]domain.SpendingLimit),
			users:    make(map[int64]domain.User),
		},
		now:      now,
		failures: make(map[string]error),
	}
}

func (m *memStore) failOnce(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

func (m *memStore) Register(uow.RepositoryName, uow.RepositoryFactory) error {
	return nil
}

func (m *memStore) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(ctx, &memTx{session: &memSession{store: m, inTx: true}}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memStore) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	return newMemRepo(&memSession{store: m}, name)
}

type memTx struct {
	session *memSession
}

func (t *memTx) Get(name uow.RepositoryName) (uow.Repository, error) {
	return newMemRepo(t.session, name)
}

func newMemRepo(session *memSession, name uow.RepositoryName) (uow.Repository, error) {
	switch repoargs.RepositoryName(name) {
	case repoargs.AccountRepoName:
		return &memAccountRepo{session}, nil
	case repoargs.TransactionRepoName:
		return &memTransactionRepo{session}, nil
	case repoargs.LimitRepoName:
		return &memLimitRepo{session}, nil
	case repoargs.UserRepoName:
		return &memUserRepo{session}, nil
	default:
		return nil, uow.ErrRepositoryNotRegistered
	}
}

// memSession внутри транзакции работает с состоянием напрямую (блокировку держит Do),
// вне транзакции блокирует хранилище на время одной операции.
type memSession struct {
	store *memStore
	inTx  bool
}

func (s *memSession) run(op string, fn func(st *memState) error) error {
	if !s.inTx {
		s.store.mu.Lock()
		defer s.store.mu.Unlock()
	}
	if err, ok := s.store.failures[op]; ok {
		delete(s.store.failures, op)
		return err
	}
	return fn(s.store.state)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("[repository/%s] %w", fmt.Sprintf(format, args...), domain.ErrRecordNotFound)
}

type memAccountRepo struct {
	s *memSession
}

func (r *memAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	var account domain.Account
	err := r.s.run("FindByID", func(st *memState) error {
		a, ok := st.accounts[id]
		if !ok {
			return notFound("account %d", id)
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *memAccountRepo) LockByIDs(_ context.Context, ids []int64) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.s.run("LockByIDs", func(st *memState) error {
		for _, id := range ids {
			if a, ok := st.accounts[id]; ok {
				accounts = append(accounts, a)
			}
		}
		slices.SortFunc(accounts, func(a, b domain.Account) int { return int(a.ID - b.ID) })
		return nil
	})
	return accounts, err
}

func (r *memAccountRepo) AdjustBalance(_ context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.s.run("AdjustBalance", func(st *memState) error {
		a, ok := st.accounts[id]
		if !ok {
			return notFound("account %d", id)
		}
		a.Balance = a.Balance.Add(delta)
		if a.Balance.IsNegative() {
			return fmt.Errorf("%w: balance check violated for account %d", domain.ErrUnknown, id)
		}
		st.accounts[id] = a
		balance = a.Balance
		return nil
	})
	return balance, err
}

func (r *memAccountRepo) FindUsableByUserAndKind(
	_ context.Context,
	userID int64,
	kind domain.AccountKind,
	now time.Time,
) (*domain.Account, error) {
	var found *domain.Account
	err := r.s.run("FindUsableByUserAndKind", func(st *memState) error {
		for _, a := range st.accounts {
			if a.UserID == nil || *a.UserID != userID || a.Kind != kind || !a.IsUsable(now) {
				continue
			}
			if found == nil || a.ID < found.ID {
				found = &a
			}
		}
		if found == nil {
			return notFound("%s account of user %d", kind, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *memAccountRepo) GetUsableByUserID(_ context.Context, userID int64, now time.Time) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.s.run("GetUsableByUserID", func(st *memState) error {
		for _, a := range st.accounts {
			if a.UserID != nil && *a.UserID == userID && a.IsUsable(now) {
				accounts = append(accounts, a)
			}
		}
		slices.SortFunc(accounts, func(a, b domain.Account) int { return int(a.ID - b.ID) })
		return nil
	})
	return accounts, err
}

type memTransactionRepo struct {
	s *memSession
}

func (r *memTransactionRepo) Create(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
	var created domain.Transaction
	err := r.s.run("Create", func(st *memState) error {
		st.nextTxID++
		created = domain.Transaction{
			ID:        st.nextTxID,
			CreatedAt: r.s.store.now(),
			From:      args.From,
			To:        args.To,
			Kind:      args.Kind,
			Amount:    args.Amount,
			Comment:   args.Comment,
		}
		st.transactions = append(st.transactions, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *memTransactionRepo) GetByAccountID(_ context.Context, accountID int64) ([]domain.AccountTransaction, error) {
	var result []domain.AccountTransaction
	err := r.s.run("GetByAccountID", func(st *memState) error {
		for i := len(st.transactions) - 1; i >= 0; i-- {
			t := st.transactions[i]
			incoming := t.To.IsAccount() && t.To.ID == accountID
			outgoing := t.From.IsAccount() && t.From.ID == accountID
			if incoming || outgoing {
				result = append(result, domain.AccountTransaction{Transaction: t, Incoming: incoming})
			}
		}
		return nil
	})
	return result, err
}

func (r *memTransactionRepo) SumOutgoingByUser(
	_ context.Context,
	userID int64,
	month time.Time,
) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.s.run("SumOutgoingByUser", func(st *memState) error {
		end := month.AddDate(0, 1, 0)
		for _, t := range st.transactions {
			if !t.From.IsAccount() || t.CreatedAt.Before(month) || !t.CreatedAt.Before(end) {
				continue
			}
			a := st.accounts[t.From.ID]
			if a.UserID != nil && *a.UserID == userID {
				sum = sum.Add(t.Amount)
			}
		}
		return nil
	})
	return sum, err
}

type memLimitRepo struct {
	s *memSession
}

func (r *memLimitRepo) GetByAccountAndMonth(
	_ context.Context,
	accountID int64,
	month time.Time,
) ([]domain.SpendingLimit, error) {
	var limits []domain.SpendingLimit
	err := r.s.run("GetByAccountAndMonth", func(st *memState) error {
		wantMonth := month.Format("2006-01")
		for k, l := range st.limits {
			if k.accountID != accountID || k.month != wantMonth {
				continue
			}
			l.MerchantAccountID = memMerchantAccountID(st, l.MerchantID)
			limits = append(limits, l)
		}
		slices.SortFunc(limits, func(a, b domain.SpendingLimit) int { return int(a.MerchantID - b.MerchantID) })
		return nil
	})
	return limits, err
}

func memMerchantAccountID(st *memState, merchantID int64) *int64 {
	var found *int64
	for _, a := range st.accounts {
		if a.Kind != domain.AccountKindMerchant || a.MerchantID == nil || *a.MerchantID != merchantID {
			continue
		}
		if found == nil || a.ID < *found {
			id := a.ID
			found = &id
		}
	}
	return found
}

func (r *memLimitRepo) Accumulate(_ context.Context, args repoargs.LimitAccumulate) (decimal.Decimal, error) {
	var spent decimal.Decimal
	err := r.s.run("Accumulate", func(st *memState) error {
		key := newLimitKey(args.AccountID, args.MerchantID, args.Month)
		l, ok := st.limits[key]
		if !ok {
			return notFound("limit %+v", key)
		}
		l.Spent = l.Spent.Add(args.Amount)
		st.limits[key] = l
		spent = l.Spent
		return nil
	})
	return spent, err
}

func (r *memLimitRepo) Reset(_ context.Context, key repoargs.LimitKey) error {
	return r.s.run("Reset", func(st *memState) error {
		k := newLimitKey(key.AccountID, key.MerchantID, key.Month)
		l, ok := st.limits[k]
		if !ok {
			return notFound("limit %+v", k)
		}
		l.Spent = decimal.Zero
		st.limits[k] = l
		return nil
	})
}

func (r *memLimitRepo) RollOver(_ context.Context, accountID int64, from, to time.Time) (int64, error) {
	var created int64
	err := r.s.run("RollOver", func(st *memState) error {
		fromMonth := from.Format("2006-01")
		var next []domain.SpendingLimit
		for k, l := range st.limits {
			if k.accountID == accountID && k.month == fromMonth {
				next = append(next, l)
			}
		}
		for _, l := range next {
			key := newLimitKey(accountID, l.MerchantID, to)
			if _, exists := st.limits[key]; exists {
				continue
			}
			st.limits[key] = domain.SpendingLimit{
				AccountID:  accountID,
				MerchantID: l.MerchantID,
				Month:      to,
				Cap:        l.Cap,
				Spent:      decimal.Zero,
			}
			created++
		}
		return nil
	})
	return created, err
}

type memUserRepo struct {
	s *memSession
}

func (r *memUserRepo) GetDueMainAccounts(_ context.Context, asOf time.Time, limit uint) ([]int64, error) {
	var ids []int64
	err := r.s.run("GetDueMainAccounts", func(st *memState) error {
		for _, a := range st.accounts {
			if a.Kind != domain.AccountKindMain || a.UserID == nil || !a.IsUsable(asOf) {
				continue
			}
			u, ok := st.users[*a.UserID]
			if ok && !u.StatementDate.After(asOf) {
				ids = append(ids, a.ID)
			}
		}
		slices.Sort(ids)
		if uint(len(ids)) > limit {
			ids = ids[:limit]
		}
		return nil
	})
	return ids, err
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.s.run("FindUserByID", func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("user %d", id)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *memUserRepo) AdvanceStatementDate(_ context.Context, userID int64, to time.Time) error {
	return r.s.run("AdvanceStatementDate", func(st *memState) error {
		u, ok := st.users[userID]
		if !ok {
			return notFound("user %d", userID)
		}
		if to.After(u.StatementDate) {
			u.StatementDate = to
		}
		st.users[userID] = u
		return nil
	})
}
