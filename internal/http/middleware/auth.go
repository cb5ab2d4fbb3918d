package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"daladala/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

var errInvalidToken = errors.New("invalid token")

// Auth validates the bearer token and stores user_id and role claims in
// the context for RequireRoles and the handlers.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(raw, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		userID, role, err := parseToken(strings.TrimSpace(strings.TrimPrefix(raw, "Bearer ")), secret)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(userIDKey, userID)
		c.Set(userRoleKey, role)
		c.Next()
	}
}

func parseToken(tokenString string, secret []byte) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, "", errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errInvalidToken
	}

	var userID int64
	switch v := claims["user_id"].(type) {
	case float64:
		userID = int64(v)
	case string:
		userID, _ = strconv.ParseInt(v, 10, 64)
	}
	if userID <= 0 {
		return 0, "", errInvalidToken
	}
	role, _ := claims["role"].(string)
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = domain.RoleRider
	}
	return userID, role, nil
}

// Caller returns the authenticated caller of the request.
func Caller(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID:    c.GetInt64(userIDKey),
		Role:      c.GetString(userRoleKey),
		RequestID: GetRequestID(c),
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
