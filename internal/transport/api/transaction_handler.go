package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/kopilka/internal/domain"
	"github.com/fsdevblog/kopilka/internal/service"
)

type TransactionHandler struct {
	svs TransactionServicer
}

func NewTransactionHandler(svs TransactionServicer) *TransactionHandler {
	return &TransactionHandler{
		svs: svs,
	}
}

// CreateTransactionParams через http можно провести только перевод, комиссию или покупку.
// Защитные транзакции и возвраты создает сам сервис.
type CreateTransactionParams struct {
	FromType domain.PartyType       `json:"fromType" binding:"required,oneof=account external"`
	FromID   int64                  `json:"fromId"   binding:"required,gt=0"`
	ToType   domain.PartyType       `json:"toType"   binding:"required,oneof=account external"`
	ToID     int64                  `json:"toId"     binding:"required,gt=0"`
	Type     domain.TransactionKind `json:"type"     binding:"required,oneof=transfer fee purchase"`
	Amount   decimal.Decimal        `json:"amount"   binding:"positive_decimal"`
	Comment  string                 `json:"comment"  binding:"max_bytes=1024"`
}

type CreateTransactionResponse struct {
	Status                  string `json:"status"`
	Message                 string `json:"message"`
	TransactionID           int64  `json:"transactionId"`
	LimitExists             bool   `json:"limitExists"`
	ProtectedTransaction    bool   `json:"protectedTransaction"`
	ProtectionTransactionID *int64 `json:"protectionTransactionId,omitempty"`
	Warning                 string `json:"warning,omitempty"`
}

// Create POST RouteGroup + TransactionsRoute.
func (t *TransactionHandler) Create(c *gin.Context) {
	var params CreateTransactionParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(bindErr, &validationErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
				errorResponse(CodeValidation, validationErrs.Error()))
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	res, err := t.svs.Submit(reqCtx, service.PostArgs{
		From:    domain.Party{Type: params.FromType, ID: params.FromID},
		To:      domain.Party{Type: params.ToType, ID: params.ToID},
		Kind:    params.Type,
		Amount:  params.Amount,
		Comment: params.Comment,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := CreateTransactionResponse{
		Status:               "ok",
		Message:              "Transaction created.",
		TransactionID:        res.Transaction.ID,
		LimitExists:          res.LimitExisted,
		ProtectedTransaction: res.ProtectionTriggered,
	}
	if res.Protection != nil {
		response.ProtectionTransactionID = &res.Protection.ID
	}
	if res.Warning != nil {
		// основная транзакция проведена, ошибку только логируем и сообщаем клиенту.
		_ = c.Error(res.Warning).SetType(gin.ErrorTypePrivate)
		response.Warning = res.Warning.Error()
	}
	c.JSON(http.StatusOK, response)
}
