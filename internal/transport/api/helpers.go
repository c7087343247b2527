package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/kopilka/internal/domain"
)

const (
	CodeValidation       = "TN"
	CodeAccountUnusable  = "A1"
	CodeNotEnoughMoney   = "F1"
	CodeNotFound         = "NF"
	CodeStoreUnavailable = "SU"
)

// retryAfterSeconds значение заголовка Retry-After при недоступности хранилища.
const (
	retryAfterSeconds = "1"
	monthLayout       = "2006-01"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Status: "error", Code: code, Message: message}
}

type idParams struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// bindID извлекает положительный id из пути. При ошибке прерывает запрос со статусом 400.
func bindID(c *gin.Context) (int64, bool) {
	var params idParams
	if err := c.ShouldBindUri(&params); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
		return 0, false
	}
	return params.ID, true
}

// abortWithServiceError переводит ошибку сервиса в http ответ. Неизвестные ошибки отдаются
// как 500 без раскрытия текста.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.Header("Retry-After", retryAfterSeconds)
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			errorResponse(CodeStoreUnavailable, "Store is unavailable, try again later."))
	case errors.Is(err, domain.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse(CodeValidation, err.Error()))
	case errors.Is(err, domain.ErrAccountUnusable):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(CodeAccountUnusable, "Account is not usable."))
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(CodeNotEnoughMoney, "Not enough money."))
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse(CodeNotFound, "Account not found."))
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
