package service

import (
	"context"
	"testing"
	"time"

	"matrixart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterGeneratesUsablePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterInput{
		Username:    "alice",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.UserID)
	assert.Equal(t, "alice", result.Username)
	assert.Len(t, result.GeneratedPassword, passwordLength)
	for _, c := range result.GeneratedPassword {
		assert.Contains(t, passwordAlphabet, string(c))
	}

	login, err := env.auth.Login(ctx, "alice", result.GeneratedPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "alice", login.User.Username)
	assert.Equal(t, models.SessionCookieName, login.Cookie.Name)
	assert.Equal(t, login.Token, login.Cookie.Value)
}

func TestRegisterRejectsInvalidUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, username := range []string{"", "ab", "has spaces", "way_too_long_username_here", "bad-chars!"} {
		_, err := env.auth.Register(ctx, RegisterInput{Username: username})
		assertErrorCode(t, err, "VALIDATION_ERROR")
	}
}

func TestRegisterDuplicateUsernameIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterInput{Username: "Alice"})
	assertErrorCode(t, err, "CONFLICT")
}

func TestLoginUsernameIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)

	login, err := env.auth.Login(ctx, "ALICE", result.GeneratedPassword)
	require.NoError(t, err)
	assert.Equal(t, "alice", login.User.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "alice", "WRONGPASSWORD123")
	assertErrorCode(t, err, "UNAUTHORIZED")

	_, err = env.auth.Login(ctx, "nobody", result.GeneratedPassword)
	assertErrorCode(t, err, "UNAUTHORIZED")
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)

	user, err := env.users.GetByID(ctx, result.UserID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, env.users.Update(ctx, user))

	_, err = env.auth.Login(ctx, "alice", result.GeneratedPassword)
	assertErrorCode(t, err, "UNAUTHORIZED")
}

func TestResolveCallerWithLiveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)
	login, err := env.auth.Login(ctx, "alice", result.GeneratedPassword)
	require.NoError(t, err)

	identity, err := env.auth.ResolveCaller(ctx, models.RequestContext{SessionToken: login.Token})
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.True(t, identity.Authenticated())
	assert.Equal(t, "alice", identity.User.Username)
}

func TestResolveCallerExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)

	expired := models.Session{
		Token:     "stale-token",
		UserID:    1,
		CreatedAt: time.Now().Add(-48 * time.Hour).Unix(),
		Expires:   time.Now().Add(-24 * time.Hour).Unix(),
	}
	require.NoError(t, env.sessions.Create(ctx, expired))

	identity, err := env.auth.ResolveCaller(ctx, models.RequestContext{SessionToken: expired.Token})
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestResolveCallerAnonCookie(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	identity, err := env.auth.ResolveCaller(ctx, models.RequestContext{AnonUsername: "neo"})
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.False(t, identity.Authenticated())
	assert.Equal(t, "neo", identity.AnonUsername)
}

func TestResolveCallerNoCredentials(t *testing.T) {
	env := newTestEnv(t)

	identity, err := env.auth.ResolveCaller(context.Background(), models.RequestContext{})
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestLogoutInvalidatesSessionAndClearsCookies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)
	login, err := env.auth.Login(ctx, "alice", result.GeneratedPassword)
	require.NoError(t, err)

	intents, err := env.auth.Logout(ctx, login.Token)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.True(t, intents[0].Clear)
	assert.True(t, intents[1].Clear)

	identity, err := env.auth.ResolveCaller(ctx, models.RequestContext{SessionToken: login.Token})
	require.NoError(t, err)
	assert.Nil(t, identity)

	// Logging out again with the same token still succeeds.
	_, err = env.auth.Logout(ctx, login.Token)
	require.NoError(t, err)
}

func TestCheckUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	available, err := env.auth.CheckUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = env.auth.Register(ctx, RegisterInput{Username: "alice"})
	require.NoError(t, err)

	available, err = env.auth.CheckUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, available)

	_, err = env.auth.CheckUsername(ctx, "x")
	assertErrorCode(t, err, "VALIDATION_ERROR")
}

func TestGeneratePasswordShape(t *testing.T) {
	p1 := generatePassword("alice", time.Now())
	p2 := generatePassword("bob", time.Now())

	assert.Len(t, p1, passwordLength)
	assert.Len(t, p2, passwordLength)
	for _, p := range []string{p1, p2} {
		for _, c := range p {
			assert.Contains(t, passwordAlphabet, string(c))
		}
	}
}
