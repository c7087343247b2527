package repoargs

import (
	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionCreate struct {
	From    domain.Party
	To      domain.Party
	Kind    domain.TransactionKind
	Amount  decimal.Decimal
	Comment string
}
