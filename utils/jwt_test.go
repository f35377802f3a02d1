package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/models"
)

func setupTokenTest(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig.SecretKey = "test-secret-key"
	config.AppConfig.TokenTTL = 168 * time.Hour

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AuthToken{}))
	return db
}

func TestAuthTokenRoundTrip(t *testing.T) {
	setupTokenTest(t)

	user := &models.User{Username: "jdoe"}
	user.ID = 42

	key, err := GenerateAuthToken(user, "test-agent")
	require.NoError(t, err)

	claims, err := ParseAuthToken(key)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "test-agent", claims.UserAgent)
}

func TestParseAuthTokenRejectsTampering(t *testing.T) {
	setupTokenTest(t)

	user := &models.User{Username: "jdoe"}
	key, err := GenerateAuthToken(user, "test-agent")
	require.NoError(t, err)

	_, err = ParseAuthToken(key + "x")
	assert.Error(t, err)

	config.AppConfig.SecretKey = "rotated-secret"
	_, err = ParseAuthToken(key)
	assert.Error(t, err)
}

func TestGetOrCreateTokenReusesPerAgent(t *testing.T) {
	db := setupTokenTest(t)

	user := &models.User{Username: "jdoe"}
	require.NoError(t, db.Create(user).Error)

	first, created, err := GetOrCreateToken(db, user, "agent-a")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := GetOrCreateToken(db, user, "agent-a")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Key, second.Key)

	third, created, err := GetOrCreateToken(db, user, "agent-b")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.Key, third.Key)
}

func TestGetOrCreateTokenReplacesExpired(t *testing.T) {
	db := setupTokenTest(t)

	user := &models.User{Username: "jdoe"}
	require.NoError(t, db.Create(user).Error)

	expired := models.AuthToken{
		UserID:    user.ID,
		Key:       "expired-key",
		UserAgent: "agent-a",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&expired).Error)

	token, created, err := GetOrCreateToken(db, user, "agent-a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "expired-key", token.Key)
}

func TestActivationToken(t *testing.T) {
	setupTokenTest(t)

	key, err := GenerateActivationToken(7)
	require.NoError(t, err)

	userID, err := ParseActivationToken(key)
	require.NoError(t, err)
	assert.EqualValues(t, 7, userID)

	// A login token must not pass as an activation link.
	authKey, err := GenerateAuthToken(&models.User{Username: "jdoe"}, "agent")
	require.NoError(t, err)
	_, err = ParseActivationToken(authKey)
	assert.Error(t, err)
}
