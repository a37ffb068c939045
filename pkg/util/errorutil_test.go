package util_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-legal-service/pkg/util"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	err := util.NewUnauthorized("Unauthorized Access - Please login")
	domainErr := util.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, http.StatusUnauthorized, domainErr.HTTPStatus)
	assert.Equal(t, "Unauthorized Access - Please login", domainErr.Message)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	domainErr := util.ToDomainError(cause)
	require.NotNil(t, domainErr)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, util.ToDomainError(nil))
}

func TestNewInternalKeepsCause(t *testing.T) {
	cause := errors.New("redis down")
	err := util.NewInternal("Authentication error occurred", cause)

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Authentication error occurred", domainErr.Message)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{util.NewValidationError("bad payload"), http.StatusBadRequest},
		{util.NewUnauthorized("nope"), http.StatusUnauthorized},
		{util.NewForbidden("Invalid role"), http.StatusForbidden},
		{util.NewNotFound("role"), http.StatusNotFound},
		{util.NewConflict("email already registered"), http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, util.ToDomainError(tc.err).HTTPStatus)
	}
}
