package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanNotConfigured means the requested plan is unknown or has no
	// provider price id attached.
	ErrPlanNotConfigured = errors.New("plan is not configured")

	// ErrProvider covers every payments-provider failure that is not a
	// payment-method rejection.
	ErrProvider = errors.New("payments provider error")
)

// PaymentDeclinedError carries the user-facing message for a rejected
// payment method.
type PaymentDeclinedError struct {
	Message string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Message)
}

// IsPaymentDeclined reports whether err is a payment-method rejection and
// returns the user-facing message if so.
func IsPaymentDeclined(err error) (string, bool) {
	var declined *PaymentDeclinedError
	if errors.As(err, &declined) {
		return declined.Message, true
	}
	return "", false
}
