package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func parseTTL() time.Duration {
	if s := os.Getenv("JWT_EXPIRES_IN"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return 24 * time.Hour
}

// Sign mints a token the way the identity provider does. The server never
// issues tokens in production; this exists for tests and local tooling.
func Sign(externalID, email, firstName, lastName string) (string, error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	claims := jwt.MapClaims{
		"sub":        externalID,
		"email":      email,
		"first_name": firstName,
		"last_name":  lastName,
		"exp":        time.Now().Add(parseTTL()).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// Verify checks a provider-issued bearer token and extracts the identity
// claims. Tokens are HS256 over the shared JWT_SECRET.
func Verify(tokenStr string) (Identity, error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Identity{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	if sub == "" {
		return Identity{}, errors.New("missing subject")
	}
	email, _ := mapc["email"].(string)
	first, _ := mapc["first_name"].(string)
	last, _ := mapc["last_name"].(string)
	return Identity{ExternalID: sub, Email: email, FirstName: first, LastName: last}, nil
}
