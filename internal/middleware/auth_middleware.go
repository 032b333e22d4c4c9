package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"staffsync/internal/shared/apperror"
	"staffsync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextEmployeeID = "employee_id"
	ContextUsername   = "username"
	ContextRole       = "role"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
)

func abortWith(c *gin.Context, err *apperror.AppError, message string) {
	if message == "" {
		message = err.Message
	}
	response.Error(c, err.HTTPStatus, err.Code, message, nil)
	c.Abort()
}

// AuthMiddleware validates an HS256 bearer token (header or access_token
// cookie) and puts employee_id (uint), username and role on the gin context.
// Tokens are issued elsewhere.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, ErrTokenNotFound, "")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired, "")
				return
			}
			abortWith(c, ErrInvalidToken, "")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, ErrInvalidToken, "Invalid token claims")
			return
		}

		employeeID, ok := employeeIDClaim(claims["employee_id"])
		if !ok {
			abortWith(c, ErrInvalidToken, "Employee ID not found in token")
			return
		}

		username, _ := claims["username"].(string)
		if username == "" {
			abortWith(c, ErrInvalidToken, "Username not found in token")
			return
		}

		role, _ := claims["role"].(string)

		c.Set(ContextEmployeeID, employeeID)
		c.Set(ContextUsername, username)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// JSON numbers decode as float64; string ids are accepted too.
func employeeIDClaim(v any) (uint, bool) {
	switch id := v.(type) {
	case float64:
		if id < 1 || id != float64(uint(id)) {
			return 0, false
		}
		return uint(id), true
	case string:
		n, err := strconv.ParseUint(id, 10, 0)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}
