package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDHeader = "X-User-ID"
	UserIDKey    = "user_id"
)

// Identity определяет пользователя запроса. Без секрета доверяет заголовку X-User-ID,
// с секретом берёт user_id из Bearer JWT. Запрос без пользователя не отклоняется:
// виджет сам показывает состояние "войдите в приложение".
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			if uid := strings.TrimSpace(c.GetHeader(UserIDHeader)); uid != "" {
				c.Set(UserIDKey, uid)
			}
			c.Next()
			return
		}

		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}

		uid, err := userIDFromToken(parts[1], []byte(secret))
		if err != nil {
			_ = c.Error(err)
		} else {
			c.Set(UserIDKey, uid)
		}
		c.Next()
	}
}

func userIDFromToken(tokenStr string, key []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	switch uid := claims["user_id"].(type) {
	case string:
		if uid != "" {
			return uid, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", uid), nil
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("token has no user id")
}

// UserID возвращает пользователя, определённого Identity, или пустую строку.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
