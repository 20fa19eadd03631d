package controllers_test

import (
	"net/http"
	"testing"

	"github.com/chirp-sns/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerPayload(username string) map[string]string {
	return map[string]string{
		"username":    username,
		"email":       username + "@example.com",
		"password":    "secret123",
		"displayName": "Test " + username,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", registerPayload("newuser"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "newuser@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	// The issued token must authenticate protected routes.
	token := body["access_token"].(string)
	w = env.doJSON(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterRejectsBadUsernames(t *testing.T) {
	env := newTestEnv(t)

	for _, username := range []string{"ab", "1starts_with_digit", "has space", "admin"} {
		payload := registerPayload("valid")
		payload["username"] = username
		w := env.doJSON(t, http.MethodPost, "/api/register", "", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, "username %q should be rejected", username)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", registerPayload("first"))
	require.Equal(t, http.StatusCreated, w.Code)

	payload := registerPayload("second")
	payload["email"] = "first@example.com"
	w = env.doJSON(t, http.MethodPost, "/api/register", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", registerPayload("victim"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "victim@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginPasswordlessAccount(t *testing.T) {
	env := newTestEnv(t)

	// Webhook-provisioned accounts have no password hash at all.
	user := env.createUser(t, "provisioned")
	require.Nil(t, user.Password)

	w := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "provisioned@example.com",
		"password": "anything",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", registerPayload("rotator"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "rotator@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	access := body["access_token"].(string)
	oldRefresh := body["refresh_token"].(string)

	w = env.doJSON(t, http.MethodPost, "/api/refresh-token", access, map[string]string{
		"refresh_token": oldRefresh,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	newRefresh := decodeBody(t, w)["refresh_token"].(string)
	assert.NotEqual(t, oldRefresh, newRefresh)

	// The rotated-out token is gone.
	w = env.doJSON(t, http.MethodPost, "/api/refresh-token", access, map[string]string{
		"refresh_token": oldRefresh,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", registerPayload("leaver"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "leaver@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	access := body["access_token"].(string)
	refresh := body["refresh_token"].(string)

	w = env.doJSON(t, http.MethodPost, "/api/logout", access, map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.RefreshToken
	require.NoError(t, env.db.Where("token = ?", refresh).First(&stored).Error)
	assert.True(t, stored.Revoked)

	w = env.doJSON(t, http.MethodPost, "/api/refresh-token", access, map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
