package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("db down")
	err := fmt.Errorf("register: %w", Wrap(cause, CodeInternal, "failed to insert registration"))

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.False(t, HasCode(cause, CodeInternal))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "not found", New(CodeNotFound, "not found").Error())
	assert.Equal(t, "load failed: boom", Wrap(errors.New("boom"), CodeInternal, "load failed").Error())
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:         http.StatusBadRequest,
		CodeValidation:         http.StatusUnprocessableEntity,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeTimeout:            http.StatusGatewayTimeout,
		CodeInternal:           http.StatusInternalServerError,
		CodeInvariantViolation: http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, ToHTTPStatus(code), "code %s", code)
	}
}
