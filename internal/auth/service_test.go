package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubCredentialStore struct {
	credential *Credential
	err        error
}

func (s *stubCredentialStore) FindByUsername(ctx context.Context, username string) (*Credential, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.credential == nil || s.credential.Username != username {
		return nil, ErrCredentialNotFound
	}
	return s.credential, nil
}

type stubResolver struct {
	actions map[int64][]string
	err     error
}

func (s *stubResolver) ResolveActions(ctx context.Context, userID int64) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.actions[userID], nil
}

func newTestService(t *testing.T, password string) (*Service, *TokenCodec) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	store := &stubCredentialStore{credential: &Credential{
		UserID:       42,
		Username:     "adal",
		PasswordHash: string(hash),
	}}
	resolver := &stubResolver{actions: map[int64][]string{
		42: {"tweet:read", "tweet:write"},
	}}
	codec := testCodec(t, time.Hour)
	return NewService(store, resolver, codec), codec
}

func TestIssueTokenEmbedsResolvedActions(t *testing.T) {
	service, codec := newTestService(t, "correct-pw")

	result, err := service.IssueToken(context.Background(), "adal", "correct-pw")
	require.NoError(t, err)
	require.Equal(t, []string{"tweet:read", "tweet:write"}, result.Actions)

	claims, err := codec.Decode(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "adal", claims.Subject())
	userID, ok := claims.UserID()
	require.True(t, ok)
	require.Equal(t, int64(42), userID)
	require.Equal(t, []string{"tweet:read", "tweet:write"}, claims.Actions())
}

func TestIssueTokenRejectsBadCredentialsIdentically(t *testing.T) {
	service, _ := newTestService(t, "correct-pw")

	_, wrongPassword := service.IssueToken(context.Background(), "adal", "wrong-pw")
	_, unknownUser := service.IssueToken(context.Background(), "unknown", "anything")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	// Identical message regardless of which check failed.
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestIssueTokenPropagatesResolverFailure(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &stubCredentialStore{credential: &Credential{UserID: 1, Username: "adal", PasswordHash: string(hash)}}
	resolver := &stubResolver{err: errors.New("storage down")}
	service := NewService(store, resolver, testCodec(t, time.Hour))

	_, err = service.IssueToken(context.Background(), "adal", "pw")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueTokenPropagatesStoreFailure(t *testing.T) {
	store := &stubCredentialStore{err: errors.New("connection refused")}
	service := NewService(store, &stubResolver{}, testCodec(t, time.Hour))

	_, err := service.IssueToken(context.Background(), "adal", "pw")
	require.Error(t, err)
	// A storage outage must not masquerade as a bad login.
	require.NotErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorContains(t, err, "connection refused")
}

func TestTokenEndpoint(t *testing.T) {
	service, _ := newTestService(t, "correct-pw")
	handler := NewHandler(nil, service)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		res := httptest.NewRecorder()
		http.HandlerFunc(handler.issueToken).ServeHTTP(res, req)
		return res
	}

	t.Run("success", func(t *testing.T) {
		res := post(`{"username":"adal","password":"correct-pw"}`)
		require.Equal(t, http.StatusOK, res.Code)
		require.Contains(t, res.Body.String(), `"access_token"`)
		require.Contains(t, res.Body.String(), `"tweet:write"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		res := post(`{"username":"adal","password":"wrong-pw"}`)
		require.Equal(t, http.StatusUnauthorized, res.Code)
		require.Contains(t, res.Body.String(), "invalid credentials")
	})

	t.Run("unknown user same response", func(t *testing.T) {
		wrong := post(`{"username":"adal","password":"wrong-pw"}`)
		unknown := post(`{"username":"ghost","password":"anything"}`)
		require.Equal(t, wrong.Code, unknown.Code)
		require.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		res := post(`{"username":"adal"}`)
		require.Equal(t, http.StatusBadRequest, res.Code)
	})
}
