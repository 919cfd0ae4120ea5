package supabase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

var ErrNoBearer = errors.New("missing Authorization header")

// UserIDFromRequest reads the sub claim of the caller's Supabase JWT. The
// signature is not checked here; the store enforces it on write.
func UserIDFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoBearer
	}

	jwtString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if jwtString == "" || jwtString == authHeader {
		return "", fmt.Errorf("invalid Authorization header")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(jwtString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("invalid JWT format")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid JWT claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("missing sub in token")
	}
	return sub, nil
}
