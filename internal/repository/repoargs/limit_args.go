package repoargs

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitKey однозначно определяет строку лимита.
type LimitKey struct {
	AccountID  int64
	MerchantID int64
	Month      time.Time
}

type LimitAccumulate struct {
	LimitKey
	Amount decimal.Decimal
}
