package identity_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"

	"github.com/tlsunbound/authgate/identity"
	"github.com/tlsunbound/authgate/identitytest"
)

func newClient(t *testing.T, baseURL string) *identity.Client {
	t.Helper()

	client, err := identity.New(identity.Config{BaseURL: baseURL})
	require.NoError(t, err)

	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := identity.New(identity.Config{})
	require.Error(t, err)
}

func TestAuthenticateSuccess(t *testing.T) {
	srv := identitytest.NewServer(identitytest.WithUser("alice", "secret"))
	defer srv.Close()

	client := newClient(t, srv.URL)

	res, err := client.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, res.Verified)
	require.NotEmpty(t, res.Token)
}

func TestAuthenticateRejected(t *testing.T) {
	srv := identitytest.NewServer(identitytest.WithUser("alice", "secret"))
	defer srv.Close()

	client := newClient(t, srv.URL)

	res, err := client.Authenticate(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	require.False(t, res.Verified)
	require.Empty(t, res.Token)
}

func TestAuthenticateUpstreamFailure(t *testing.T) {
	srv := identitytest.NewServer()
	srv.FailAuth = true
	defer srv.Close()

	client := newClient(t, srv.URL)

	_, err := client.Authenticate(context.Background(), "alice", "secret")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	require.Equal(t, identity.TextCodeUpstream, richErr.TextCode)
}

func TestAuthenticateTransportFailure(t *testing.T) {
	srv := identitytest.NewServer()
	url := srv.URL
	srv.Close()

	client := newClient(t, url)

	_, err := client.Authenticate(context.Background(), "alice", "secret")
	require.Error(t, err)
}

func TestVerifyValidToken(t *testing.T) {
	srv := identitytest.NewServer(identitytest.WithUser("alice", "secret"))
	defer srv.Close()

	client := newClient(t, srv.URL)

	auth, err := client.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)

	res, err := client.Verify(context.Background(), auth.Token)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "alice", res.User)
	require.Greater(t, res.Exp, time.Now().Unix())
}

func TestVerifyExpiredToken(t *testing.T) {
	srv := identitytest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL)

	token := srv.MintToken("alice", -time.Minute)

	res, err := client.Verify(context.Background(), token)
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestVerifyGarbageToken(t *testing.T) {
	srv := identitytest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL)

	res, err := client.Verify(context.Background(), "not-a-token")
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestVerifyNonOKBecomesInvalidResult(t *testing.T) {
	srv := identitytest.NewServer()
	srv.FailVerify = true
	defer srv.Close()

	client := newClient(t, srv.URL)

	res, err := client.Verify(context.Background(), "any")
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.NotEmpty(t, res.Error)
}

func TestVerifyTransportFailure(t *testing.T) {
	srv := identitytest.NewServer()
	url := srv.URL
	srv.Close()

	client := newClient(t, url)

	_, err := client.Verify(context.Background(), "any")
	require.Error(t, err)
}
