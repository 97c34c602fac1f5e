package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/incidentmap/pkg/response"
)

// SubjectKey is the gin context key holding the authenticated subject
const SubjectKey = "subject"

// Issuer is the issuer claim of minted tokens
const Issuer = "incidentmap"

// IssueToken mints an HS256 token for subject valid for ttl
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims
func ParseToken(secret, token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Auth middleware requires a valid bearer token. Browsers cannot set headers
// on websocket upgrades, so the token may also come from the "token" query
// parameter.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if h := c.GetHeader("Authorization"); h != "" {
			var ok bool
			token, ok = strings.CutPrefix(h, "Bearer ")
			if !ok {
				response.Error(c, http.StatusUnauthorized, "Authorization header must be a bearer token")
				c.Abort()
				return
			}
		}
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Missing bearer token")
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}
