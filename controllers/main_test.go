package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/config"
	"github.com/chirp-sns/api-go/models"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/chirp-sns/api-go/routes"
	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// memStore keeps uploaded objects in memory so upload handlers can be
// exercised without object storage.
type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	redis  *miniredis.Miniredis
	store  *memStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", testSecret)

	// A single connection keeps the in-memory database alive and
	// serializes access the way a single sqlite file would.
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateModels(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := &memStore{objects: map[string][]byte{}}

	router := gin.New()
	routes.SetupRoutes(router, db, ratelimit.NewRedisLimiter(rdb), cache.NewPageCache(rdb), store)

	return &testEnv{db: db, router: router, redis: mr, store: store}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		ExternalID:  uuid.New().String(),
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createPost(t *testing.T, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{Content: content, UserID: author.ID, IsPublished: true}
	require.NoError(t, e.db.Create(post).Error)
	return post
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ExternalID,
		"user_id": user.ID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func likePath(postID uint) string {
	return fmt.Sprintf("/api/posts/%d/like", postID)
}

func followPath(userID uint) string {
	return fmt.Sprintf("/api/users/id/%d/follow", userID)
}
