package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

const scopeContextKey = "recallit.scope"

// authClaims is the JWT payload the server accepts.
type authClaims struct {
	UserID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// IssueToken mints a signed token for a user. Exposed for the CLI and
// for tests; production deployments normally receive tokens from an
// external identity provider sharing the secret.
func IssueToken(secret []byte, userID core.ID, ttl time.Duration) (string, error) {
	claims := authClaims{
		UserID: uint64(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// authMiddleware rejects unauthenticated requests before any data
// access and stores the caller's scope in the request context.
func authMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid || claims.UserID == 0 {
			abortWithError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(scopeContextKey, storage.NewScope(core.ID(claims.UserID)))
		c.Next()
	}
}

// scopeFrom returns the caller's scope stored by the auth middleware.
func scopeFrom(c *gin.Context) storage.Scope {
	value, _ := c.Get(scopeContextKey)
	scope, _ := value.(storage.Scope)
	return scope
}
