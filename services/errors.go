package services

import "net/http"

// ServiceError is a typed error with an HTTP status code. The message is
// user-facing (Spanish); the specific cause is logged server-side.
type ServiceError struct {
	Code       string `json:"code"`
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Validation errors; reported synchronously, never retried automatically.
var (
	ErrEmptyCart = &ServiceError{
		Code:       "empty_cart",
		StatusCode: http.StatusBadRequest,
		Message:    "No hay productos para cobrar.",
	}
	ErrIncompleteCustomer = &ServiceError{
		Code:       "incomplete_customer",
		StatusCode: http.StatusBadRequest,
		Message:    "Completa nombre, dirección y número móvil para continuar.",
	}
	ErrBelowMinimumOrder = &ServiceError{
		Code:       "below_min_order",
		StatusCode: http.StatusBadRequest,
		Message:    "Pedidos internacionales desde €50.00.",
	}
	ErrUnknownProvider = &ServiceError{
		Code:       "unknown_provider",
		StatusCode: http.StatusBadRequest,
		Message:    "Método de pago no disponible.",
	}
)

// NewProviderError wraps a payment-provider rejection. The provider message
// is surfaced verbatim; the user retriggers the payment, we never retry.
func NewProviderError(message string) *ServiceError {
	if message == "" {
		message = "No se pudo iniciar el pago. Intenta de nuevo."
	}
	return &ServiceError{
		Code:       "provider_error",
		StatusCode: http.StatusBadGateway,
		Message:    message,
	}
}

// NewNotificationError marks a failed order-notification dispatch. The
// payment stays marked as processed; re-notifying is worse than a missed
// notification.
func NewNotificationError(message string) *ServiceError {
	return &ServiceError{
		Code:       "notification_error",
		StatusCode: http.StatusInternalServerError,
		Message:    message,
	}
}
