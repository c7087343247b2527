package domain

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAccountUnusable     = errors.New("account is not usable")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNoSuchLimit         = errors.New("no such limit")
	ErrNoProtectionAccount = errors.New("protection account not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrPartialSweep        = errors.New("partial sweep failure")
)

// LimitSweepError ошибка обработки одной строки лимита при закрытии выписки.
type LimitSweepError struct {
	MerchantID int64
	Err        error
}

func (e *LimitSweepError) Error() string {
	return fmt.Sprintf("sweep limit for merchant %d: %s", e.MerchantID, e.Err.Error())
}

func (e *LimitSweepError) Unwrap() error {
	return e.Err
}

// PartialSweepError сообщает, что часть строк лимитов при закрытии выписки обработать не удалось.
// Остальные строки обработаны.
type PartialSweepError struct {
	AccountID int64
	Failed    int
	errs      *multierror.Error
}

func NewPartialSweepError(accountID int64) *PartialSweepError {
	return &PartialSweepError{AccountID: accountID}
}

// Add добавляет ошибку обработки строки лимита.
func (e *PartialSweepError) Add(err error) {
	e.Failed++
	e.errs = multierror.Append(e.errs, err)
}

// ErrorOrNil возвращает nil, если ошибок не было.
func (e *PartialSweepError) ErrorOrNil() error {
	if e == nil || e.Failed == 0 {
		return nil
	}
	return e
}

func (e *PartialSweepError) Error() string {
	return fmt.Sprintf("closing statement for account %d: %d row(s) failed: %s",
		e.AccountID, e.Failed, e.errs.Error())
}

func (e *PartialSweepError) Is(target error) bool {
	return target == ErrPartialSweep
}

// Unwrap возвращает ошибки отдельных строк.
func (e *PartialSweepError) Unwrap() []error {
	if e.errs == nil {
		return nil
	}
	return e.errs.WrappedErrors()
}

// AsPartialSweep возвращает *PartialSweepError, если err сообщает только о необработанных строках
// лимитов, а само закрытие выписки завершено.
func AsPartialSweep(err error) (*PartialSweepError, bool) {
	var partial *PartialSweepError
	if !errors.As(err, &partial) || error(partial) != err {
		return nil, false
	}
	return partial, true
}
