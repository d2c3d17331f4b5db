package services

import (
	"context"
	"testing"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	return NewAuthService(users, testJWTSecret, testLogger()), users
}

func TestSignupIssuesTokens(t *testing.T) {
	svc, _ := newAuthFixture()

	resp, err := svc.Signup(context.Background(), "fatima", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleUser, resp.User.Role)
	assert.NotEqual(t, "hunter2hunter2", resp.User.HashedPassword)
	require.NotNil(t, resp.Tokens)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	_, err = svc.Signup(context.Background(), "fatima", "another")
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestSigninVerifiesCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Signup(context.Background(), "ahmed", "correct horse")
	require.NoError(t, err)

	resp, err := svc.Signin(context.Background(), "ahmed", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ahmed", resp.User.Username)

	_, err = svc.Signin(context.Background(), "ahmed", "wrong")
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))

	// Unknown usernames are indistinguishable from bad passwords.
	_, err = svc.Signin(context.Background(), "nobody", "whatever")
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))
}

func TestRefreshPicksUpRoleChanges(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Signup(ctx, "layla", "pass-pass-pass")
	require.NoError(t, err)

	require.NoError(t, users.UpdateRole(ctx, resp.User.ID, models.UserRoleDealer))

	tokens, err := svc.Refresh(ctx, resp.Tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := utils.ValidateToken(tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserRoleDealer), claims.Role)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))

	// A deleted account cannot refresh.
	require.NoError(t, users.Delete(ctx, resp.User.ID))
	_, err = svc.Refresh(ctx, resp.Tokens.RefreshToken)
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))
}

func TestUpdateUserRole(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()
	user := users.put(&models.User{Username: "sara", Role: models.UserRoleUser})

	_, err := svc.UpdateUserRole(ctx, user.ID, models.UserRole("superuser"))
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	updated, err := svc.UpdateUserRole(ctx, user.ID, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, updated.Role)

	// Same role is a no-op, not an error.
	again, err := svc.UpdateUserRole(ctx, user.ID, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, again.Role)

	_, err = svc.UpdateUserRole(ctx, primitive.NewObjectID(), models.UserRoleDealer)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}
