package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/config"
	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
)

// getJWTKey returns the shared signing key used by the external auth service.
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// Claims represents the claims this service reads from access tokens.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateAccessToken mints an HS256 access token for a user. The real
// tokens come from the external auth service; this exists for tooling and
// tests that exercise the API directly.
func GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "expenses-tracker-api",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// RequireAuth validates the Bearer token and stores the user id on the
// context for handlers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return getJWTKey(), nil
		})
		if err != nil || !token.Valid || claims.UserID == 0 {
			abortUnauthorized(c)
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	appErr := apperrors.ErrUnauthorized
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
