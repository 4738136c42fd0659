package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesType(t *testing.T) {
	err := Wrap(NewConflictError("version mismatch"), "save hangout")

	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "save hangout")
}

func TestWrap_NonAppErrorBecomesInternal(t *testing.T) {
	err := Wrap(fmt.Errorf("dial tcp: timeout"), "query feed")

	appErr := GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.ErrorContains(t, appErr.Cause, "dial tcp")
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "anything"))
}

func TestAppError_HTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidationError("x").HTTPStatus)
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("x").HTTPStatus)
	assert.Equal(t, http.StatusConflict, NewConflictError("x").HTTPStatus)
	assert.Equal(t, http.StatusConflict, NewCapacityExceededError("x").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, NewUnauthorizedError("").HTTPStatus)
	assert.Equal(t, http.StatusForbidden, NewForbiddenError("").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, NewRepositoryError("op", fmt.Errorf("x")).HTTPStatus)
}

func TestCapacityExceeded_DistinctFromConflict(t *testing.T) {
	err := NewCapacityExceededError("all spots claimed")

	assert.True(t, IsCapacityExceeded(err))
	assert.False(t, IsConflict(err))
	assert.Equal(t, "CAPACITY_EXCEEDED", err.Code)
}
