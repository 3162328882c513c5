package service

import (
	"testing"

	"bridge-go/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (UserService, *fakeUserRepo) {
	repo := &fakeUserRepo{}
	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	return NewUserService(repo, jwtManager), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newTestUserService()

	user, err := svc.Register("maria", "s3cret-pass", "es")
	require.NoError(t, err)
	assert.Equal(t, "USER", user.Role)
	assert.Equal(t, "es", user.Language)
	assert.NotEqual(t, "s3cret-pass", user.Password, "password must be stored hashed")
	require.Len(t, repo.users, 1)

	accessToken, refreshToken, err := svc.Login("maria", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
}

func TestRegister_DuplicateUsernameRejected(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Register("maria", "s3cret-pass", "")
	require.NoError(t, err)

	_, err = svc.Register("maria", "another-pass", "")
	assert.Error(t, err)
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Register("maria", "s3cret-pass", "")
	require.NoError(t, err)

	_, _, err = svc.Login("maria", "wrong")
	assert.Error(t, err)

	_, _, err = svc.Login("nobody", "s3cret-pass")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Register("maria", "s3cret-pass", "")
	require.NoError(t, err)

	_, refreshToken, err := svc.Login("maria", "s3cret-pass")
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	_, _, err = svc.RefreshToken("garbage-token")
	assert.Error(t, err)
}
