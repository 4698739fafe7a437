package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindAndCodeExtraction(t *testing.T) {
	err := Precondition(CodeTransferNotAllowed, "transfer exceeds daily cap")

	assert.True(t, IsKind(err, KindPrecondition))
	assert.False(t, IsKind(err, KindValidation))
	assert.Equal(t, CodeTransferNotAllowed, CodeOf(err))
	assert.Equal(t, KindPrecondition, KindOf(err))
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("during submit: %w", Infrastructure(cause, CodeRPCUnavailable, "rpc node unreachable"))

	assert.True(t, IsKind(err, KindInfrastructure))
	assert.Equal(t, CodeRPCUnavailable, CodeOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestCodeOfNonServiceError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not initialized", NotInitialized(), http.StatusServiceUnavailable},
		{"validation", Validation(CodeInvalidAddress, "bad address"), http.StatusBadRequest},
		{"precondition", Precondition(CodeAlreadyRegistered, "already registered"), http.StatusUnprocessableEntity},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"submission", Submission(errors.New("rejected"), "submit failed"), http.StatusBadGateway},
		{"timeout", ConfirmationTimeout("0xabc"), http.StatusGatewayTimeout},
		{"reverted", Reverted("0xabc"), http.StatusUnprocessableEntity},
		{"infrastructure", Infrastructure(errors.New("down"), CodeStoreUnavailable, "store down"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svcErr *ServiceError
			require.ErrorAs(t, tt.err, &svcErr)
			assert.Equal(t, tt.status, svcErr.StatusCode())
		})
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Submission(cause, "node rejected submission")
	assert.Contains(t, err.Error(), "node rejected submission")
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestIsMatchesKindAndCode(t *testing.T) {
	err := Precondition(CodeNotEligible, "already issued today")
	target := &ServiceError{Kind: KindPrecondition, Code: CodeNotEligible}
	assert.ErrorIs(t, err, target)

	kindOnly := &ServiceError{Kind: KindPrecondition}
	assert.ErrorIs(t, err, kindOnly)
}
