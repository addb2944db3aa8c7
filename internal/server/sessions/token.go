package sessions

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/confideapp/confide/internal/shared"
)

// GenerateToken signs an HS256 token for the given session. The claims are
// limited to the session id (jti), the principal id (sub) and the time
// bounds; password hash, salt and secret payload never enter the token.
func GenerateToken(sessionID, principalID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   principalID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns
// the session id and principal id it carries. Malformed, forged and
// expired tokens all fail with shared.ErrorSessionInvalid.
func ParseToken(tokenString string, secretKey []byte) (sessionID, principalID string, err error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, shared.ErrorSessionInvalid
		}
		return secretKey, nil
	})
	if err != nil {
		return "", "", shared.ErrorSessionInvalid
	}

	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return "", "", shared.ErrorSessionInvalid
	}

	return claims.ID, claims.Subject, nil
}
