package middleware

import (
	"net/http"
	"strings"

	"cartify/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey = "user_id" // string (UUID)
)

var validMethods = []string{jwt.SigningMethodHS256.Alg()}

// Bearerトークン(HS256)を検証してsubのUUIDをcontextに入れる
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(cfg.JWTSecret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, raw, ok := strings.Cut(c.Request().Header.Get("Authorization"), " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			var claims jwt.RegisteredClaims
			if _, err := jwt.ParseWithClaims(raw, &claims, keyFunc, jwt.WithValidMethods(validMethods)); err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//subは正規化したUUID文字列で持つ
			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			c.Set(CtxUserIDKey, id.String())

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
