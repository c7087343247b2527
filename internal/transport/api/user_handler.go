package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/kopilka/internal/domain"
)

type UserHandler struct {
	svs AccountServicer
}

func NewUserHandler(svs AccountServicer) *UserHandler {
	return &UserHandler{
		svs: svs,
	}
}

type AccountResponseItem struct {
	ID       int64                `json:"id"`
	Type     domain.AccountKind   `json:"type"`
	Status   domain.AccountStatus `json:"status"`
	Caption  string               `json:"caption"`
	Balance  decimal.Decimal      `json:"balance"`
	OpenedAt string               `json:"openedAt"`
	ClosedAt *string              `json:"closedAt"`
}

// Accounts GET RouteGroup + UserAccountsRoute. Только пригодные счета пользователя.
func (u *UserHandler) Accounts(c *gin.Context) {
	userID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	accounts, err := u.svs.UserAccounts(reqCtx, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]AccountResponseItem, len(accounts))
	for i, account := range accounts {
		response[i] = AccountResponseItem{
			ID:       account.ID,
			Type:     account.Kind,
			Status:   account.Status,
			Caption:  account.Caption,
			Balance:  account.Balance,
			OpenedAt: formatTime(account.OpenedAt),
			ClosedAt: formatOptionalTime(account.ClosedAt),
		}
	}
	c.JSON(http.StatusOK, response)
}

type SpendingResponse struct {
	UserID int64           `json:"userId"`
	Spent  decimal.Decimal `json:"spent"`
}

// Spending GET RouteGroup + UserSpendingRoute. Сумма исходящих транзакций за текущий месяц.
func (u *UserHandler) Spending(c *gin.Context) {
	userID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	spent, err := u.svs.UserSpending(reqCtx, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SpendingResponse{UserID: userID, Spent: spent})
}
