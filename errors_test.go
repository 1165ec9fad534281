package authgate

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestAuthSentinelsCarryCategoryAndCode(t *testing.T) {
	for _, err := range []*goerrors.Error{
		ErrInvalidCredentials,
		ErrTokenMissing,
		ErrTokenInvalid,
	} {
		require.Equal(t, goerrors.CategoryAuth, err.Category)
		require.Equal(t, goerrors.CodeUnauthorized, err.Code)
		require.True(t, IsAuthError(err))
	}

	require.Equal(t, goerrors.CategoryValidation, ErrMissingCredentials.Category)
	require.Equal(t, goerrors.CodeBadRequest, ErrMissingCredentials.Code)
	require.False(t, IsAuthError(ErrMissingCredentials))
}

func TestWrapUpstream(t *testing.T) {
	cause := errors.New("connection refused")

	err := WrapUpstream(cause, "identity service unreachable")

	require.True(t, IsUpstreamError(err))
	require.False(t, IsAuthError(err))
	require.ErrorIs(t, err, cause)
}

func TestIsUpstreamErrorRejectsOthers(t *testing.T) {
	require.False(t, IsUpstreamError(nil))
	require.False(t, IsUpstreamError(errors.New("plain")))
	require.False(t, IsUpstreamError(ErrTokenInvalid))
}
