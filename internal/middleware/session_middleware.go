package middleware

import (
	"net/http"
	"strings"
	"time"

	"phoneGuide/pkg/logger"
	"phoneGuide/pkg/utils"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Message string `json:"message"`
}

// SessionMiddleware validates the Bearer session token and exposes the
// session and client identity to handlers via context keys.
func SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Message: "Missing authorization header",
				})
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Message: "Invalid authorization format",
				})
			}

			tokenString := tokenParts[1]

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				logger.Error("Failed to parse session token", err)
				return c.JSON(http.StatusUnauthorized, errorBody{
					Message: "Invalid token",
				})
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusUnauthorized, errorBody{
					Message: "Token expired",
				})
			}

			c.Set("session_id", claims.SessionID)
			c.Set("client_id", claims.ClientID)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}
