package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{AccountNotFound, http.StatusNotFound},
		{DestinationNotFound, http.StatusNotFound},
		{EntityNotFound, http.StatusNotFound},
		{DuplicateAccount, http.StatusConflict},
		{CustomerConflict, http.StatusConflict},
		{InvalidAmount, http.StatusBadRequest},
		{InsufficientFunds, http.StatusBadRequest},
		{MissingDestination, http.StatusBadRequest},
		{SameAccountTransfer, http.StatusBadRequest},
		{InvalidInput, http.StatusBadRequest},
		{StorageFailure, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			err := NewAppError(tc.code, "boom")
			assert.Equal(t, tc.status, err.HTTPStatus())
		})
	}
}

func TestFromPassesThroughAppErrors(t *testing.T) {
	appErr := NewAppError(InvalidAmount, "bad amount")
	assert.Same(t, appErr, From(appErr))

	wrapped := fmt.Errorf("service: %w", appErr)
	assert.Same(t, appErr, From(wrapped))
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	got := From(stderrors.New("connection reset"))
	assert.Equal(t, StorageFailure, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus())
	assert.Equal(t, "connection reset", got.Details)
}

func TestWithDetailsDoesNotMutate(t *testing.T) {
	detailed := ErrAccountNotFound.WithDetails("id 42")
	assert.Equal(t, "id 42", detailed.Details)
	assert.Empty(t, ErrAccountNotFound.Details)
	assert.Equal(t, ErrAccountNotFound.Code, detailed.Code)
}

func TestErrorString(t *testing.T) {
	err := NewAppErrorf(InvalidInput, "field %s is required", "email")
	assert.Equal(t, "invalid_input: field email is required", err.Error())
}
