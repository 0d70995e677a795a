package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/bitelog/bite/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProvider verifies HS256 tokens locally, e.g. Supabase access tokens
// checked against the project's JWT secret.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) User(_ context.Context, token string) (*model.User, error) {
	claims, err := p.verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &model.User{ID: userID, Email: email, Role: role}, nil
}

func (p *JWTProvider) verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Issue signs a token for userID. Used by tooling and tests.
func (p *JWTProvider) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
