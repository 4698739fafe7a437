// Package errors contains helper functions and types to work with errors
// raised by the chain gateway and the event indexer.
package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a failure along the transaction lifecycle.
type Kind int

const (
	// KindUnknown is the zero value and never returned deliberately.
	KindUnknown Kind = iota
	// KindNotInitialized the gateway was used before Initialize succeeded.
	KindNotInitialized
	// KindValidation malformed input caught before any network call.
	KindValidation
	// KindPrecondition a read-only check ahead of submission failed
	// (already registered, not registered, ineligible, transfer not allowed).
	KindPrecondition
	// KindSubmission the network rejected the call itself.
	KindSubmission
	// KindConfirmationTimeout the hash is known but no receipt was observed
	// within the deadline. Indeterminate: the submission may still confirm.
	KindConfirmationTimeout
	// KindReverted a receipt was observed and on-chain execution failed.
	KindReverted
	// KindInfrastructure RPC node or store unreachable.
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindNotInitialized:
		return "KindNotInitialized"
	case KindValidation:
		return "KindValidation"
	case KindPrecondition:
		return "KindPrecondition"
	case KindSubmission:
		return "KindSubmission"
	case KindConfirmationTimeout:
		return "KindConfirmationTimeout"
	case KindReverted:
		return "KindReverted"
	case KindInfrastructure:
		return "KindInfrastructure"
	default:
		return "KindUnknown"
	}
}

// Stable machine-readable codes. The HTTP layer maps these to responses
// without inspecting message text, so they must never change meaning.
const (
	CodeNotInitialized      = "ERR_NOT_INITIALIZED"
	CodeInvalidAddress      = "ERR_INVALID_ADDRESS"
	CodeInvalidArgument     = "ERR_INVALID_ARGUMENT"
	CodeInvalidDates        = "ERR_INVALID_DATES"
	CodeAlreadyRegistered   = "ERR_ALREADY_REGISTERED"
	CodeNotRegistered       = "ERR_NOT_REGISTERED"
	CodeNotEligible         = "ERR_NOT_ELIGIBLE"
	CodeTransferNotAllowed  = "ERR_TRANSFER_NOT_ALLOWED"
	CodeNoExpiredCoins      = "ERR_NO_EXPIRED_COINS"
	CodeSubmissionFailed    = "ERR_SUBMISSION_FAILED"
	CodeConfirmationTimeout = "ERR_CONFIRMATION_TIMEOUT"
	CodeReverted            = "ERR_TX_REVERTED"
	CodeRPCUnavailable      = "ERR_RPC_UNAVAILABLE"
	CodeStoreUnavailable    = "ERR_STORE_UNAVAILABLE"
	CodeWalletUnavailable   = "ERR_WALLET_UNAVAILABLE"
	CodeNotFound            = "ERR_NOT_FOUND"
)

// ServiceError is the tagged error returned at the outer edge of the
// gateway and the indexer read API. It carries a Kind for programmatic
// branching, a stable Code for the transport layer and the original cause.
type ServiceError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error method to comply with error interface
func (err *ServiceError) Error() string {
	if err.Err != nil {
		return err.Message + ": " + err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err *ServiceError) Unwrap() error {
	return err.Err
}

// Is checks kind and code equality so errors.Is works against sentinels.
func (err *ServiceError) Is(target error) bool {
	var svcErr *ServiceError
	if errors.As(target, &svcErr) {
		return err.Kind == svcErr.Kind && (svcErr.Code == "" || err.Code == svcErr.Code)
	}
	return false
}

// IsKind checks that the provided error is a ServiceError with the desired Kind.
func IsKind(err error, kind Kind) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}

// CodeOf extracts the stable code from an error, or empty string.
func CodeOf(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ""
}

// KindOf extracts the kind from an error.
func KindOf(err error) Kind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnknown
}

// NotInitialized reports use of the gateway before Initialize.
func NotInitialized() error {
	return &ServiceError{
		Kind:    KindNotInitialized,
		Code:    CodeNotInitialized,
		Message: "gateway is not initialized",
	}
}

// Validation returns a validation error with the given code.
// Raised before any network call is made.
func Validation(code, message string) error {
	return &ServiceError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// Precondition returns a precondition error with the given code.
// Raised after a read-only check, before spending gas on a submission.
func Precondition(code, message string) error {
	return &ServiceError{
		Kind:    KindPrecondition,
		Code:    code,
		Message: message,
	}
}

// Submission wraps a node-level rejection of a state-changing call.
func Submission(err error, message string) error {
	return &ServiceError{
		Kind:    KindSubmission,
		Code:    CodeSubmissionFailed,
		Message: message,
		Err:     err,
	}
}

// ConfirmationTimeout reports that no receipt was observed in time for the
// given hash. The submission is still live and may confirm later.
func ConfirmationTimeout(txHash string) error {
	return &ServiceError{
		Kind:    KindConfirmationTimeout,
		Code:    CodeConfirmationTimeout,
		Message: "confirmation timed out for transaction " + txHash,
	}
}

// Reverted reports that the mined receipt shows failed execution.
func Reverted(txHash string) error {
	return &ServiceError{
		Kind:    KindReverted,
		Code:    CodeReverted,
		Message: "transaction " + txHash + " reverted on chain",
	}
}

// Infrastructure wraps an RPC or store connectivity failure.
func Infrastructure(err error, code, message string) error {
	return &ServiceError{
		Kind:    KindInfrastructure,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound returns a not-found error for read queries.
func NotFound(message string) error {
	return &ServiceError{
		Kind:    KindPrecondition,
		Code:    CodeNotFound,
		Message: message,
	}
}

// StatusCode returns the HTTP status code for the error kind.
func (err *ServiceError) StatusCode() int {
	switch err.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindPrecondition:
		if err.Code == CodeNotFound {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	case KindSubmission, KindInfrastructure:
		return http.StatusBadGateway
	case KindConfirmationTimeout:
		return http.StatusGatewayTimeout
	case KindReverted:
		return http.StatusUnprocessableEntity
	case KindNotInitialized:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
