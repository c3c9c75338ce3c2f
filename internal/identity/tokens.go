package identity

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session token claims: the registered set plus the email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateToken signs an HS256 session token for user. It returns the token
// and its expiry.
func GenerateToken(user models.User, tokenID string, secretKey []byte, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	// NumericDate has second precision.
	issuedAt = issuedAt.Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates tokenString at now. Expired tokens yield
// common.ErrTokenExpired; anything else wrong yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
