package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("mark: %w", Forbidden())
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, http.StatusForbidden, KindOf(err).Status())
	assert.True(t, Is(err, KindForbidden))
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "DB error", PublicMessage(err, "DB error"))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Internal("insert attendance", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server error", PublicMessage(err, "Server error"))
	assert.Contains(t, err.Error(), "constraint failed")
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         http.StatusBadRequest,
		KindInvalidCredentials: http.StatusBadRequest,
		KindUnauthorized:       http.StatusUnauthorized,
		KindNotFound:           http.StatusNotFound,
		KindConflict:           http.StatusConflict,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}
