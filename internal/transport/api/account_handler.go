package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/kopilka/internal/domain"
)

type AccountHandler struct {
	accountSvs   AccountServicer
	limitSvs     LimitServicer
	statementSvs StatementServicer
}

func NewAccountHandler(
	accountSvs AccountServicer,
	limitSvs LimitServicer,
	statementSvs StatementServicer,
) *AccountHandler {
	return &AccountHandler{
		accountSvs:   accountSvs,
		limitSvs:     limitSvs,
		statementSvs: statementSvs,
	}
}

type AccountStatusResponse struct {
	AccountID int64 `json:"accountId"`
	Usable    bool  `json:"usable"`
}

// Status GET RouteGroup + AccountStatusRoute. Неизвестный счет считается непригодным.
func (a *AccountHandler) Status(c *gin.Context) {
	accountID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	usable, err := a.accountSvs.AccountStatus(reqCtx, accountID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AccountStatusResponse{AccountID: accountID, Usable: usable})
}

type LimitResponseItem struct {
	MerchantID        int64           `json:"merchantId"`
	MerchantAccountID *int64          `json:"merchantAccountId"`
	Month             string          `json:"month"`
	Limit             decimal.Decimal `json:"limitAmt"`
	Spent             decimal.Decimal `json:"spentAmt"`
}

// Limits GET RouteGroup + AccountLimitsRoute.
func (a *AccountHandler) Limits(c *gin.Context) {
	accountID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	limits, err := a.limitSvs.CurrentLimits(reqCtx, accountID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]LimitResponseItem, len(limits))
	for i, limit := range limits {
		response[i] = LimitResponseItem{
			MerchantID:        limit.MerchantID,
			MerchantAccountID: limit.MerchantAccountID,
			Month:             limit.Month.Format(monthLayout),
			Limit:             limit.Cap,
			Spent:             limit.Spent,
		}
	}
	c.JSON(http.StatusOK, response)
}

type TransactionResponseItem struct {
	ID         int64                  `json:"id"`
	CreatedAt  string                 `json:"createdAt"`
	FromType   domain.PartyType       `json:"fromType"`
	FromID     int64                  `json:"fromId"`
	ToType     domain.PartyType       `json:"toType"`
	ToID       int64                  `json:"toId"`
	Type       domain.TransactionKind `json:"type"`
	Amount     decimal.Decimal        `json:"amount"`
	Comment    string                 `json:"comment"`
	IsIncoming bool                   `json:"isIncoming"`
}

// Transactions GET RouteGroup + AccountTransactionsRoute.
func (a *AccountHandler) Transactions(c *gin.Context) {
	accountID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := a.accountSvs.AccountTransactions(reqCtx, accountID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]TransactionResponseItem, len(transactions))
	for i, transaction := range transactions {
		response[i] = TransactionResponseItem{
			ID:         transaction.ID,
			CreatedAt:  formatTime(transaction.CreatedAt),
			FromType:   transaction.From.Type,
			FromID:     transaction.From.ID,
			ToType:     transaction.To.Type,
			ToID:       transaction.To.ID,
			Type:       transaction.Kind,
			Amount:     transaction.Amount,
			Comment:    transaction.Comment,
			IsIncoming: transaction.Incoming,
		}
	}
	c.JSON(http.StatusOK, response)
}

type StatementResponse struct {
	Status      string          `json:"status"`
	Period      string          `json:"period"`
	Processed   int             `json:"processed"`
	Failed      int             `json:"failed"`
	SweptToFund decimal.Decimal `json:"sweptToFund"`
	ChargedBack decimal.Decimal `json:"chargedBack"`
	FeeCharged  decimal.Decimal `json:"feeCharged"`
	FeeUnpaid   decimal.Decimal `json:"feeUnpaid"`
}

// CloseStatement POST RouteGroup + AccountStatementRoute.
// Ошибки отдельных строк лимитов не считаются ошибкой запроса: клиент получает статус partial
// и количество необработанных строк.
func (a *AccountHandler) CloseStatement(c *gin.Context) {
	accountID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	res, err := a.statementSvs.CloseStatement(reqCtx, accountID)
	status := "ok"
	if err != nil {
		if _, isPartial := domain.AsPartialSweep(err); !isPartial || res == nil {
			abortWithServiceError(c, err)
			return
		}
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
		status = "partial"
	}

	c.JSON(http.StatusOK, StatementResponse{
		Status:      status,
		Period:      res.Period.Format(monthLayout),
		Processed:   res.Processed,
		Failed:      res.Failed,
		SweptToFund: res.SweptToFund,
		ChargedBack: res.ChargedBack,
		FeeCharged:  res.FeeCharged,
		FeeUnpaid:   res.FeeUnpaid,
	})
}
