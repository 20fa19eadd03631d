package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postContents(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	raw, ok := body["posts"].([]interface{})
	require.True(t, ok, "posts missing from response")
	contents := make([]string, 0, len(raw))
	for _, item := range raw {
		post := item.(map[string]interface{})
		contents = append(contents, post["content"].(string))
	}
	return contents
}

func TestHomeFeedShowsOwnAndFollowedPosts(t *testing.T) {
	env := newTestEnv(t)
	reader := env.createUser(t, "reader")
	friend := env.createUser(t, "friend")
	stranger := env.createUser(t, "stranger")
	token := env.tokenFor(t, reader)

	env.createPost(t, reader, "my own post")
	env.createPost(t, friend, "friend post")
	env.createPost(t, stranger, "stranger post")

	w := env.doJSON(t, http.MethodPost, followPath(friend.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/feed", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	contents := postContents(t, decodeBody(t, w))
	assert.Contains(t, contents, "my own post")
	assert.Contains(t, contents, "friend post")
	assert.NotContains(t, contents, "stranger post")
}

func TestHomeFeedExcludesReplies(t *testing.T) {
	env := newTestEnv(t)
	reader := env.createUser(t, "reader")
	token := env.tokenFor(t, reader)

	root := env.createPost(t, reader, "root")
	w := env.doJSON(t, http.MethodPost, "/api/posts", token, map[string]interface{}{
		"content":  "a reply",
		"parentId": root.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/feed", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	contents := postContents(t, decodeBody(t, w))
	assert.Contains(t, contents, "root")
	assert.NotContains(t, contents, "a reply")
}

func TestPublicTimelineCaching(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	viewer := env.createUser(t, "viewer")
	token := env.tokenFor(t, viewer)

	env.createPost(t, author, "first post")

	// First request populates the cache.
	w := env.doJSON(t, http.MethodGet, "/api/timeline", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, cached := decodeBody(t, w)["cached"]
	assert.False(t, cached)

	// Second request is served from the cache.
	w = env.doJSON(t, http.MethodGet, "/api/timeline", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["cached"])

	// Creating a post invalidates the landing page, so the next read is
	// fresh and includes the new post.
	w = env.doJSON(t, http.MethodPost, "/api/posts", env.tokenFor(t, author), map[string]string{"content": "second post"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/timeline", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	_, cached = body["cached"]
	assert.False(t, cached)
	assert.Contains(t, postContents(t, body), "second post")
}

func TestPublicTimelineDeepPagesSkipCache(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	viewer := env.createUser(t, "viewer")
	token := env.tokenFor(t, viewer)

	env.createPost(t, author, "only post")

	w := env.doJSON(t, http.MethodGet, "/api/timeline?page=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	_, cached := body["cached"]
	assert.False(t, cached)
	assert.Empty(t, body["posts"])
}
