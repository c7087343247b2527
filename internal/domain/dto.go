package domain

import "time"

type AccountKind string

const (
	AccountKindMain       AccountKind = "main"
	AccountKindProtected  AccountKind = "protected"
	AccountKindAdditional AccountKind = "additional"
	AccountKindMerchant   AccountKind = "merchant"
)

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACT"
	AccountStatusClosed  AccountStatus = "CLO"
	AccountStatusPending AccountStatus = "PND"
)

// PartyType тип участника движения денег: счет в системе или внешний контрагент.
type PartyType string

const (
	PartyTypeAccount  PartyType = "account"
	PartyTypeExternal PartyType = "external"
)

func (p PartyType) IsValid() bool {
	return p == PartyTypeAccount || p == PartyTypeExternal
}

type TransactionKind string

const (
	TransactionKindTransfer   TransactionKind = "transfer"
	TransactionKindFee        TransactionKind = "fee"
	TransactionKindPurchase   TransactionKind = "purchase"
	TransactionKindProtection TransactionKind = "protection"
	TransactionKindChargeback TransactionKind = "chargeback"
)

func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindTransfer,
		TransactionKindFee,
		TransactionKindPurchase,
		TransactionKindProtection,
		TransactionKindChargeback:
		return true
	default:
		return false
	}
}

// MonthStart обрезает момент времени до первого числа месяца (00:00 в той же локации).
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
