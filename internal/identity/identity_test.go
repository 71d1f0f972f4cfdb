package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"mixmodas/internal/identity"
	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newLocal(t *testing.T) (*identity.LocalProvider, *repositories.MemoryUserRepository) {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	p := identity.NewLocalProvider(users, identity.LocalConfig{JWTSecret: "test_jwt_secret", ResetURL: "http://loja.test/redefinir"})
	return p, users
}

func registerLocal(t *testing.T, p *identity.LocalProvider, users *repositories.MemoryUserRepository, email, password string) {
	t.Helper()
	account, err := p.Register(context.Background(), identity.RegisterInput{Email: email, Password: password, Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, account.PasswordHash)
	assert.NotEqual(t, password, account.PasswordHash)
	require.NoError(t, users.Create(context.Background(), &models.User{Email: email, PasswordHash: account.PasswordHash}))
}

func TestLocalProvider_AuthenticateAndVerify(t *testing.T) {
	ctx := context.Background()
	p, users := newLocal(t)
	registerLocal(t, p, users, "ana@example.com", "segredo123")

	session, err := p.Authenticate(ctx, "ana@example.com", "segredo123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	claims, err := p.VerifyToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	_, err = p.VerifyToken(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestLocalProvider_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	ctx := context.Background()
	p, users := newLocal(t)
	registerLocal(t, p, users, "ana@example.com", "segredo123")

	_, errWrong := p.Authenticate(ctx, "ana@example.com", "errada")
	_, errUnknown := p.Authenticate(ctx, "ninguem@example.com", "segredo123")
	assert.ErrorIs(t, errWrong, identity.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, identity.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLocalProvider_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemoryUserRepository()
	p := identity.NewLocalProvider(users, identity.LocalConfig{JWTSecret: "s", TokenDuration: time.Nanosecond})
	registerLocal(t, p, users, "ana@example.com", "segredo123")

	session, err := p.Authenticate(ctx, "ana@example.com", "segredo123")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = p.VerifyToken(ctx, session.Token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestLocalProvider_PasswordReset(t *testing.T) {
	ctx := context.Background()
	p, users := newLocal(t)
	registerLocal(t, p, users, "ana@example.com", "segredo123")

	_, err := p.PasswordResetLink(ctx, "ninguem@example.com")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	link, err := p.PasswordResetLink(ctx, "ana@example.com")
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "loja.test", u.Host)
	resetToken := u.Query().Get("token")
	require.NotEmpty(t, resetToken)

	// A reset token is not a session token.
	_, err = p.VerifyToken(ctx, resetToken)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	email, hash, err := p.ResetPassword(ctx, resetToken, "novaSenha456")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", email)

	user, err := users.GetByEmail(ctx, email)
	require.NoError(t, err)
	user.PasswordHash = hash
	require.NoError(t, users.Update(ctx, user))

	_, err = p.Authenticate(ctx, "ana@example.com", "novaSenha456")
	assert.NoError(t, err)
	_, err = p.Authenticate(ctx, "ana@example.com", "segredo123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

// MockAuthClient is a mock implementation of identity.AuthClient
type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

func (m *MockAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockAuthClient) PasswordResetLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthClient) DeleteUser(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func TestFirebaseProvider_RegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	client := new(MockAuthClient)
	p := identity.NewFirebaseProvider(client, identity.FirebaseConfig{APIKey: "key"})
	assert.Equal(t, "firebase", p.Name())

	client.On("CreateUser", ctx, mock.AnythingOfType("*auth.UserToCreate")).
		Return(&auth.UserRecord{UserInfo: &auth.UserInfo{UID: "fb-uid-1"}}, nil).Once()
	account, err := p.Register(ctx, identity.RegisterInput{Email: "ana@example.com", Password: "segredo123", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "fb-uid-1", account.UID)
	assert.Empty(t, account.PasswordHash)

	client.On("CreateUser", ctx, mock.AnythingOfType("*auth.UserToCreate")).Return(nil, errors.New("backend down")).Once()
	_, err = p.Register(ctx, identity.RegisterInput{Email: "bia@example.com", Password: "x"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrEmailExists)

	exp := time.Now().Add(time.Hour).Unix()
	client.On("VerifyIDToken", ctx, "good").Return(&auth.Token{UID: "fb-uid-1", Expires: exp, Claims: map[string]interface{}{"email": "ana@example.com"}}, nil).Once()
	claims, err := p.VerifyToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "fb-uid-1", claims.UID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, exp, claims.ExpiresAt.Unix())

	// Failures that say nothing about the token are not a rejection.
	client.On("VerifyIDToken", ctx, "unreachable").Return(nil, errors.New("failed to fetch public keys")).Once()
	_, err = p.VerifyToken(ctx, "unreachable")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrInvalidToken)

	client.On("DeleteUser", ctx, "fb-uid-1").Return(nil).Once()
	require.NoError(t, p.RemoveAccount(ctx, "fb-uid-1"))

	client.On("PasswordResetLink", ctx, "ana@example.com").Return("https://reset.example/abc", nil).Once()
	link, err := p.PasswordResetLink(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://reset.example/abc", link)
	client.AssertExpectations(t)
}

func TestFirebaseProvider_Authenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "segredo123" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"localId":"fb-uid-1","email":"ana@example.com","idToken":"id-token","expiresIn":"3600"}`))
	}))
	defer server.Close()

	p := identity.NewFirebaseProvider(new(MockAuthClient), identity.FirebaseConfig{APIKey: "key", SignInURL: server.URL})

	session, err := p.Authenticate(context.Background(), "ana@example.com", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, "fb-uid-1", session.UID)
	assert.Equal(t, "id-token", session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	_, err = p.Authenticate(context.Background(), "ana@example.com", "errada")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestFirebaseProvider_AuthenticateWithoutAPIKey(t *testing.T) {
	p := identity.NewFirebaseProvider(new(MockAuthClient), identity.FirebaseConfig{})
	_, err := p.Authenticate(context.Background(), "ana@example.com", "segredo123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestFirebaseProvider_RejectsMalformedToken(t *testing.T) {
	// The emulator signer lets the real client run without credentials.
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", "127.0.0.1:9099")
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: "mixmodas-test"}, option.WithoutAuthentication())
	require.NoError(t, err)
	client, err := app.Auth(ctx)
	require.NoError(t, err)

	p := identity.NewFirebaseProvider(client, identity.FirebaseConfig{APIKey: "key"})
	_, err = p.VerifyToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
