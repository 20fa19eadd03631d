package controllers_test

import (
	"net/http"
	"testing"

	"github.com/chirp-sns/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserProfileCounts(t *testing.T) {
	env := newTestEnv(t)
	subject := env.createUser(t, "subject")
	viewer := env.createUser(t, "viewer")
	other := env.createUser(t, "other")

	env.createPost(t, subject, "post one")
	env.createPost(t, subject, "post two")
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: viewer.ID, FollowingID: subject.ID}).Error)
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: other.ID, FollowingID: subject.ID}).Error)
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: subject.ID, FollowingID: other.ID}).Error)

	w := env.doJSON(t, http.MethodGet, "/api/users/subject", env.tokenFor(t, viewer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)

	assert.Equal(t, float64(2), body["followersCount"])
	assert.Equal(t, float64(1), body["followingCount"])
	assert.Equal(t, float64(2), body["postsCount"])
	assert.Equal(t, true, body["isFollowing"])
}

func TestGetUserProfileOmitsPrivateFields(t *testing.T) {
	env := newTestEnv(t)
	subject := env.createUser(t, "subject")
	viewer := env.createUser(t, "viewer")

	w := env.doJSON(t, http.MethodGet, "/api/users/subject", env.tokenFor(t, viewer), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Another user's email must never leave the server.
	assert.NotContains(t, w.Body.String(), subject.Email)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	for _, field := range []string{"email", "email_verified", "provider"} {
		_, present := user[field]
		assert.False(t, present, "profile must not expose %q", field)
	}
	assert.Equal(t, "subject", user["username"])
}

func TestGetUserProfileNotFound(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.createUser(t, "viewer")

	w := env.doJSON(t, http.MethodGet, "/api/users/nobody", env.tokenFor(t, viewer), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["code"])
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	actor := env.createUser(t, "actor")
	token := env.tokenFor(t, actor)

	w := env.doJSON(t, http.MethodPut, "/api/profile", token, map[string]string{
		"displayName": "  New Name  ",
		"bio":         "hello there",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.User
	require.NoError(t, env.db.First(&updated, actor.ID).Error)
	assert.Equal(t, "New Name", updated.DisplayName)
	assert.Equal(t, "hello there", updated.Bio)
}

func TestUpdateProfileRequiresDisplayName(t *testing.T) {
	env := newTestEnv(t)
	actor := env.createUser(t, "actor")

	w := env.doJSON(t, http.MethodPut, "/api/profile", env.tokenFor(t, actor), map[string]string{
		"displayName": "   ",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, w)["code"])
}

func TestUpdateProfileRateLimited(t *testing.T) {
	env := newTestEnv(t)
	actor := env.createUser(t, "actor")
	token := env.tokenFor(t, actor)

	for i := 0; i < 5; i++ {
		w := env.doJSON(t, http.MethodPut, "/api/profile", token, map[string]string{"displayName": "Actor"})
		require.Equal(t, http.StatusOK, w.Code, "update %d should be allowed", i+1)
	}

	w := env.doJSON(t, http.MethodPut, "/api/profile", token, map[string]string{"displayName": "Actor"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decodeBody(t, w)["code"])
}
