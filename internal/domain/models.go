package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            int64
	CreatedAt     time.Time
	StatementDate time.Time
}

type Account struct {
	ID         int64
	UserID     *int64
	MerchantID *int64
	Kind       AccountKind
	Status     AccountStatus
	Caption    string
	Balance    decimal.Decimal
	OpenedAt   time.Time
	ClosedAt   *time.Time
}

// IsUsable возвращает true, если счет активен и now попадает в окно [OpenedAt, ClosedAt).
// Незакрытый счет (ClosedAt == nil) действует бессрочно.
func (a *Account) IsUsable(now time.Time) bool {
	if a.Status != AccountStatusActive {
		return false
	}
	if now.Before(a.OpenedAt) {
		return false
	}
	if a.ClosedAt != nil && !now.Before(*a.ClosedAt) {
		return false
	}
	return true
}

type Party struct {
	Type PartyType
	ID   int64
}

func AccountParty(id int64) Party {
	return Party{Type: PartyTypeAccount, ID: id}
}

func ExternalParty(id int64) Party {
	return Party{Type: PartyTypeExternal, ID: id}
}

func (p Party) IsAccount() bool {
	return p.Type == PartyTypeAccount
}

type Transaction struct {
	ID        int64
	CreatedAt time.Time
	From      Party
	To        Party
	Kind      TransactionKind
	Amount    decimal.Decimal
	Comment   string
}

// Delta возвращает изменение баланса счета accountID, которое вносит транзакция.
func (t *Transaction) Delta(accountID int64) decimal.Decimal {
	delta := decimal.Zero
	if t.From.IsAccount() && t.From.ID == accountID {
		delta = delta.Sub(t.Amount)
	}
	if t.To.IsAccount() && t.To.ID == accountID {
		delta = delta.Add(t.Amount)
	}
	return delta
}

// SpendingLimit месячный лимит трат счета у конкретного мерчанта. MerchantAccountID - счет мерчанта,
// с которым сравнивается получатель транзакции; nil, если у мерчанта нет счета.
type SpendingLimit struct {
	AccountID         int64
	MerchantID        int64
	MerchantAccountID *int64
	Month             time.Time
	Cap               decimal.Decimal
	Spent             decimal.Decimal
}

func (l *SpendingLimit) IsBreached() bool {
	return l.Spent.GreaterThan(l.Cap)
}

// Overage сумма превышения лимита. Для непревышенного лимита - ноль.
func (l *SpendingLimit) Overage() decimal.Decimal {
	if !l.IsBreached() {
		return decimal.Zero
	}
	return l.Spent.Sub(l.Cap)
}

// AccountTransaction транзакция с точки зрения конкретного счета.
type AccountTransaction struct {
	Transaction
	Incoming bool
}
