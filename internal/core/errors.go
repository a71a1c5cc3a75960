// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Decision-loop conditions. All but ErrLedgerWrite are absorbed
	// locally by the runner: the period is skipped and the loop goes on.
	ErrDataGap           = &Error{Code: "DATA_GAP", Message: "price or fundamentals missing for decision date"}
	ErrRiskModelUnfit    = &Error{Code: "RISK_MODEL_UNFIT", Message: "volatility model could not be fitted"}
	ErrNoEligibleAsset   = &Error{Code: "NO_ELIGIBLE_ASSET", Message: "no candidate passed selection"}
	ErrZeroPriceQuantity = &Error{Code: "ZERO_PRICE_QUANTITY", Message: "non-positive price yields zero quantity"}
	ErrCostExceeded      = &Error{Code: "COST_EXCEEDED", Message: "estimated trading cost above cap"}
	ErrLedgerWrite       = &Error{Code: "LEDGER_WRITE", Message: "ledger write failed"}

	// Data errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for estimation"}

	// Collector errors
	ErrCollectorFailed  = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}
	ErrCollectorTimeout = &Error{Code: "COLLECTOR_TIMEOUT", Message: "collector timeout"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
