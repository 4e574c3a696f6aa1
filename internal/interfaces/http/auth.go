package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"orders/internal/domain"
	"orders/internal/identity"
)

var errInvalidSession = domain.NewError(domain.ErrUnauthorized, "session invalid or expired")

// JWTMiddleware verifies the bearer token and puts the user id from its
// "id" claim into the request context.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return errInvalidSession
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				return domain.NewError(domain.ErrUnauthorized, "token missing from Authorization header")
			}

			claims := jwt.MapClaims{}
			_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil {
				return errInvalidSession
			}

			userID, err := userIDFromClaims(claims)
			if err != nil {
				return errInvalidSession
			}

			ctx := identity.WithUserID(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	var userID int64
	switch v := claims["id"].(type) {
	case float64:
		userID = int64(v)
		if float64(userID) != v {
			return 0, fmt.Errorf("user id %v is not an integer", v)
		}
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, err
		}
		userID = id
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		userID = id
	default:
		return 0, fmt.Errorf("token has no user id")
	}

	if userID <= 0 {
		return 0, fmt.Errorf("user id must be positive")
	}
	return userID, nil
}
