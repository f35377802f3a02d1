package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/models"
)

type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	UserAgent string `json:"user_agent"`
	jwt.RegisteredClaims
}

// GenerateAuthToken signs a bearer token for the user. The token doubles as
// the key of the persisted AuthToken row.
func GenerateAuthToken(user *models.User, userAgent string) (string, error) {
	claims := &Claims{
		UserID:    user.ID,
		Username:  user.Username,
		UserAgent: userAgent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AppConfig.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.SecretKey))
}

func ParseAuthToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GetOrCreateToken reuses a still-valid token issued to the same user agent,
// otherwise issues and persists a new one. The bool reports whether a new
// token was created.
func GetOrCreateToken(db *gorm.DB, user *models.User, userAgent string) (*models.AuthToken, bool, error) {
	var existing models.AuthToken
	err := db.Where("user_id = ? AND user_agent = ?", user.ID, userAgent).
		Order("expires_at DESC").First(&existing).Error
	if err == nil && existing.IsValid() {
		return &existing, false, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	key, err := GenerateAuthToken(user, userAgent)
	if err != nil {
		return nil, false, err
	}

	token := models.AuthToken{
		UserID:    user.ID,
		Key:       key,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(config.AppConfig.TokenTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return nil, false, err
	}

	return &token, true, nil
}

const activationTokenTTL = 48 * time.Hour

// GenerateActivationToken signs a short-lived token embedded in the account
// activation link.
func GenerateActivationToken(userID uint) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "activation",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(activationTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.SecretKey))
}

// ParseActivationToken returns the user id carried by an activation link token.
func ParseActivationToken(tokenString string) (uint, error) {
	claims, err := ParseAuthToken(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.Subject != "activation" {
		return 0, errors.New("not an activation token")
	}
	return claims.UserID, nil
}
